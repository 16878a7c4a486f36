package movie

import (
	"context"
	"fmt"
	"strings"

	"movieapi/pkg/paginate"
)

const (
	SortReleaseDate = "releaseDate"
	SortTitle       = "title"
)

var (
	defaultSort = []paginate.SortBy{{Column: SortReleaseDate, Direction: paginate.ASC}}

	listConfig = paginate.Config{
		SortableColumns: []string{SortReleaseDate, SortTitle},
		DefaultSortBy:   defaultSort,
		DefaultLimit:    50,
		MaxLimit:        50,
	}

	yearConfig = paginate.Config{
		SortableColumns: []string{SortReleaseDate},
		DefaultSortBy:   defaultSort,
		DefaultLimit:    50,
		MaxLimit:        50,
	}
)

type Page = paginate.Paginated[ListView]

type Service interface {
	List(ctx context.Context, q paginate.Query) (Page, error)
	ListByYear(ctx context.Context, year int, q paginate.Query) (Page, error)
	ListByGenre(ctx context.Context, genre string, q paginate.Query) (Page, error)
	Get(ctx context.Context, id int) (DetailView, error)
}

// Repository reads the movie store. Find receives a normalized query whose
// sort columns are limited to SortReleaseDate and SortTitle.
type Repository interface {
	Find(ctx context.Context, f Filter, q paginate.Query) ([]Movie, int64, error)
	FindByID(ctx context.Context, id int) (Movie, error)
}

// RatingRepository reads the rating store.
type RatingRepository interface {
	AverageRating(ctx context.Context, movieID int) (float64, error)
}

type Usecase struct {
	movies    Repository
	ratings   RatingRepository
	presenter *Presenter
}

func NewUsecase(movies Repository, ratings RatingRepository, presenter *Presenter) *Usecase {
	return &Usecase{
		movies:    movies,
		ratings:   ratings,
		presenter: presenter,
	}
}

func (uc *Usecase) List(ctx context.Context, q paginate.Query) (Page, error) {
	return uc.find(ctx, listConfig, Filter{}, q)
}

func (uc *Usecase) ListByYear(ctx context.Context, year int, q paginate.Query) (Page, error) {
	return uc.find(ctx, yearConfig, Filter{Year: &year}, q)
}

func (uc *Usecase) ListByGenre(ctx context.Context, genre string, q paginate.Query) (Page, error) {
	if strings.TrimSpace(genre) == "" {
		return Page{}, ErrInvalidGenre
	}
	return uc.find(ctx, listConfig, Filter{Genre: &genre}, q)
}

// Get returns the detail view of a movie with the mean of its ratings,
// 0 when it has none. A missing movie yields ErrMovieNotFound.
func (uc *Usecase) Get(ctx context.Context, id int) (DetailView, error) {
	m, err := uc.movies.FindByID(ctx, id)
	if err != nil {
		return DetailView{}, err
	}

	avg, err := uc.ratings.AverageRating(ctx, m.MovieID)
	if err != nil {
		return DetailView{}, fmt.Errorf("average rating of movie %d: %w", m.MovieID, err)
	}

	return uc.presenter.DetailView(m, avg), nil
}

func (uc *Usecase) find(ctx context.Context, cfg paginate.Config, f Filter, q paginate.Query) (Page, error) {
	q, err := cfg.Normalize(q)
	if err != nil {
		return Page{}, err
	}

	movies, total, err := uc.movies.Find(ctx, f, q)
	if err != nil {
		return Page{}, err
	}

	return paginate.Map(paginate.New(q, movies, total), uc.presenter.ListView), nil
}
