package httpserver

import (
	"movieapi/errs"
	"movieapi/pkg/paginate"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
)

var errNumericParam = errs.Errorf(errs.EINVALID, "Validation failed (numeric string is expected)")

func (s *Server) RegisterPublicMovieRoutes(g *echo.Group) {
	g.GET("/movies", s.handleListMovies)
	g.GET("/movies/year/:year", s.handleListMoviesByYear)
	g.GET("/movies/genre/:genre", s.handleListMoviesByGenre)
	g.GET("/movies/:id", s.handleGetMovie)
}

// handleListMovies godoc
// @Summary Get all movies
// @Description Paginated list of movies with IMDb id, title, genres, release date and budget
// @Tags movies
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (max: 50, default: 50)"
// @Param sortBy query string false "releaseDate:ASC, title:DESC, ..."
// @Success 200 {object} movie.Page
// @Failure 400 {object} APIResponse
// @Router /api/movies [get]
func (s *Server) handleListMovies(c echo.Context) error {
	q, err := s.bindPageQuery(c)
	if err != nil {
		return err
	}

	page, err := s.MovieService.List(c.Request().Context(), q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, page)
}

// handleListMoviesByYear godoc
// @Summary Get movies by year
// @Description Paginated list of movies released in a year, sortable by release date only
// @Tags movies
// @Produce json
// @Param year path int true "Release year"
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (max: 50, default: 50)"
// @Param sortBy query string false "releaseDate:ASC or releaseDate:DESC"
// @Success 200 {object} movie.Page
// @Failure 400 {object} APIResponse
// @Router /api/movies/year/{year} [get]
func (s *Server) handleListMoviesByYear(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return errNumericParam
	}

	q, err := s.bindPageQuery(c)
	if err != nil {
		return err
	}

	page, err := s.MovieService.ListByYear(c.Request().Context(), year, q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, page)
}

// handleListMoviesByGenre godoc
// @Summary Get movies by genre
// @Description Paginated list of movies listing the genre (exact, case-sensitive name)
// @Tags movies
// @Produce json
// @Param genre path string true "Genre name, e.g. Comedy"
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (max: 50, default: 50)"
// @Param sortBy query string false "releaseDate:ASC, title:DESC, ..."
// @Success 200 {object} movie.Page
// @Failure 400 {object} APIResponse
// @Router /api/movies/genre/{genre} [get]
func (s *Server) handleListMoviesByGenre(c echo.Context) error {
	genre := c.Param("genre")
	if unescaped, err := url.PathUnescape(genre); err == nil {
		genre = unescaped
	}

	q, err := s.bindPageQuery(c)
	if err != nil {
		return err
	}

	page, err := s.MovieService.ListByGenre(c.Request().Context(), genre, q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, page)
}

// handleGetMovie godoc
// @Summary Get movie details
// @Description Movie details with the average rating from the ratings store
// @Tags movies
// @Produce json
// @Param id path int true "Movie ID"
// @Success 200 {object} movie.DetailView
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /api/movies/{id} [get]
func (s *Server) handleGetMovie(c echo.Context) error {
	if err := s.requireMovieService(); err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errNumericParam
	}

	details, err := s.MovieService.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, details)
}

func (s *Server) requireMovieService() error {
	if s.MovieService == nil {
		return errs.Errorf(errs.ENOTIMPLEMENTED, "movie service not configured")
	}
	return nil
}

func (s *Server) bindPageQuery(c echo.Context) (paginate.Query, error) {
	if err := s.requireMovieService(); err != nil {
		return paginate.Query{}, err
	}

	var req ListMoviesRequest
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		return paginate.Query{}, errs.Errorf(errs.EINVALID, "invalid pagination query")
	}
	if err := c.Validate(&req); err != nil {
		return paginate.Query{}, err
	}

	return req.ToQuery(s.linkBase(c)), nil
}

// linkBase is the absolute URL of the current request without its query.
func (s *Server) linkBase(c echo.Context) string {
	base := s.PublicURL
	if base == "" {
		base = c.Scheme() + "://" + c.Request().Host
	}
	return base + c.Request().URL.EscapedPath()
}
