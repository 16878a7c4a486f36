package movie_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"movieapi/errs"
	"movieapi/movie"
	"movieapi/pkg/paginate"
)

type MockMovieRepository struct {
	mock.Mock
}

func (m *MockMovieRepository) Find(ctx context.Context, f movie.Filter, q paginate.Query) ([]movie.Movie, int64, error) {
	args := m.Called(ctx, f, q)
	return args.Get(0).([]movie.Movie), args.Get(1).(int64), args.Error(2)
}

func (m *MockMovieRepository) FindByID(ctx context.Context, id int) (movie.Movie, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(movie.Movie), args.Error(1)
}

type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) AverageRating(ctx context.Context, movieID int) (float64, error) {
	args := m.Called(ctx, movieID)
	return args.Get(0).(float64), args.Error(1)
}

func newUsecase() (*movie.Usecase, *MockMovieRepository, *MockRatingRepository) {
	movies := new(MockMovieRepository)
	ratings := new(MockRatingRepository)
	return movie.NewUsecase(movies, ratings, movie.NewPresenter(language.English)), movies, ratings
}

func defaultQuery(page, limit int) paginate.Query {
	return paginate.Query{
		Page:   page,
		Limit:  limit,
		SortBy: []paginate.SortBy{{Column: movie.SortReleaseDate, Direction: paginate.ASC}},
		Path:   "http://localhost/api/movies",
	}
}

func TestList(t *testing.T) {
	t.Run("should return a page of list views with defaults applied", func(t *testing.T) {
		uc, movies, _ := newUsecase()
		movies.On("Find", mock.Anything, movie.Filter{}, defaultQuery(1, 50)).
			Return([]movie.Movie{sampleMovie()}, int64(1), nil).Once()

		page, err := uc.List(context.Background(), paginate.Query{Path: "http://localhost/api/movies"})

		require.NoError(t, err)
		assert.Len(t, page.Data, 1)
		assert.Equal(t, "$1,000,000", page.Data[0].Budget)
		assert.Equal(t, int64(1), page.Meta.TotalItems)
		assert.Equal(t, 1, page.Meta.TotalPages)
		assert.Equal(t, 50, page.Meta.ItemsPerPage)
		assert.Empty(t, page.Links.Next)
		movies.AssertExpectations(t)
	})

	t.Run("should cap limit at 50", func(t *testing.T) {
		uc, movies, _ := newUsecase()
		movies.On("Find", mock.Anything, movie.Filter{}, defaultQuery(2, 50)).
			Return([]movie.Movie{}, int64(120), nil).Once()

		page, err := uc.List(context.Background(), paginate.Query{Page: 2, Limit: 500, Path: "http://localhost/api/movies"})

		require.NoError(t, err)
		assert.Equal(t, 50, page.Meta.ItemsPerPage)
		assert.Equal(t, 3, page.Meta.TotalPages)
		assert.NotEmpty(t, page.Links.Next)
		assert.NotEmpty(t, page.Links.Previous)
		movies.AssertExpectations(t)
	})

	t.Run("should sort by title when requested", func(t *testing.T) {
		uc, movies, _ := newUsecase()
		q := paginate.Query{Page: 1, Limit: 10, SortBy: []paginate.SortBy{{Column: movie.SortTitle, Direction: paginate.DESC}}}
		movies.On("Find", mock.Anything, movie.Filter{}, q).Return([]movie.Movie{}, int64(0), nil).Once()

		_, err := uc.List(context.Background(), q)

		require.NoError(t, err)
		movies.AssertExpectations(t)
	})

	t.Run("should reject unsortable column", func(t *testing.T) {
		uc, movies, _ := newUsecase()

		_, err := uc.List(context.Background(), paginate.Query{
			SortBy: []paginate.SortBy{{Column: "budget", Direction: paginate.ASC}},
		})

		assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
		movies.AssertNotCalled(t, "Find")
	})

	t.Run("should propagate storage failures", func(t *testing.T) {
		uc, movies, _ := newUsecase()
		storageErr := errors.New("connection refused")
		movies.On("Find", mock.Anything, mock.Anything, mock.Anything).
			Return([]movie.Movie(nil), int64(0), storageErr).Once()

		_, err := uc.List(context.Background(), paginate.Query{})

		assert.ErrorIs(t, err, storageErr)
		assert.Equal(t, errs.EINTERNAL, errs.ErrorCode(err))
	})
}

func TestListByYear(t *testing.T) {
	t.Run("should filter by year", func(t *testing.T) {
		uc, movies, _ := newUsecase()
		year := 1988
		movies.On("Find", mock.Anything, movie.Filter{Year: &year}, defaultQuery(1, 50)).
			Return([]movie.Movie{sampleMovie()}, int64(1), nil).Once()

		page, err := uc.ListByYear(context.Background(), 1988, paginate.Query{Path: "http://localhost/api/movies"})

		require.NoError(t, err)
		assert.Len(t, page.Data, 1)
		movies.AssertExpectations(t)
	})

	t.Run("should only allow sorting by release date", func(t *testing.T) {
		uc, movies, _ := newUsecase()

		_, err := uc.ListByYear(context.Background(), 1988, paginate.Query{
			SortBy: []paginate.SortBy{{Column: movie.SortTitle, Direction: paginate.ASC}},
		})

		assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
		movies.AssertNotCalled(t, "Find")
	})
}

func TestListByGenre(t *testing.T) {
	t.Run("should filter by genre", func(t *testing.T) {
		uc, movies, _ := newUsecase()
		genre := "Drama"
		movies.On("Find", mock.Anything, movie.Filter{Genre: &genre}, defaultQuery(1, 50)).
			Return([]movie.Movie{sampleMovie()}, int64(1), nil).Once()

		page, err := uc.ListByGenre(context.Background(), "Drama", paginate.Query{Path: "http://localhost/api/movies"})

		require.NoError(t, err)
		assert.Len(t, page.Data, 1)
		movies.AssertExpectations(t)
	})

	t.Run("should return empty data when nothing matches", func(t *testing.T) {
		uc, movies, _ := newUsecase()
		movies.On("Find", mock.Anything, mock.Anything, mock.Anything).
			Return([]movie.Movie(nil), int64(0), nil).Once()

		page, err := uc.ListByGenre(context.Background(), "Western", paginate.Query{})

		require.NoError(t, err)
		assert.NotNil(t, page.Data)
		assert.Empty(t, page.Data)
		assert.Equal(t, int64(0), page.Meta.TotalItems)
	})

	t.Run("should reject blank genre", func(t *testing.T) {
		uc, movies, _ := newUsecase()

		_, err := uc.ListByGenre(context.Background(), "  ", paginate.Query{})

		assert.Equal(t, movie.ErrInvalidGenre, err)
		movies.AssertNotCalled(t, "Find")
	})
}

func TestGet(t *testing.T) {
	t.Run("should return detail view with average rating", func(t *testing.T) {
		uc, movies, ratings := newUsecase()
		movies.On("FindByID", mock.Anything, 2).Return(sampleMovie(), nil).Once()
		ratings.On("AverageRating", mock.Anything, 2).Return(4.0, nil).Once()

		v, err := uc.Get(context.Background(), 2)

		require.NoError(t, err)
		assert.Equal(t, 2, v.MovieID)
		assert.Equal(t, 4.0, v.AverageRating)
		assert.Equal(t, "$1,000,000", v.Budget)
		movies.AssertExpectations(t)
		ratings.AssertExpectations(t)
	})

	t.Run("should return zero average when movie has no ratings", func(t *testing.T) {
		uc, movies, ratings := newUsecase()
		movies.On("FindByID", mock.Anything, 2).Return(sampleMovie(), nil).Once()
		ratings.On("AverageRating", mock.Anything, 2).Return(0.0, nil).Once()

		v, err := uc.Get(context.Background(), 2)

		require.NoError(t, err)
		assert.Equal(t, 0.0, v.AverageRating)
	})

	t.Run("should return not found for missing movie", func(t *testing.T) {
		uc, movies, ratings := newUsecase()
		movies.On("FindByID", mock.Anything, 404).Return(movie.Movie{}, movie.ErrMovieNotFound).Once()

		_, err := uc.Get(context.Background(), 404)

		assert.Equal(t, movie.ErrMovieNotFound, err)
		assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
		ratings.AssertNotCalled(t, "AverageRating")
	})

	t.Run("should keep storage failures distinct from not found", func(t *testing.T) {
		uc, movies, _ := newUsecase()
		movies.On("FindByID", mock.Anything, 2).Return(movie.Movie{}, errors.New("connection reset")).Once()

		_, err := uc.Get(context.Background(), 2)

		assert.Error(t, err)
		assert.Equal(t, errs.EINTERNAL, errs.ErrorCode(err))
	})

	t.Run("should propagate rating store failures", func(t *testing.T) {
		uc, movies, ratings := newUsecase()
		ratingsErr := errors.New("ratings db unavailable")
		movies.On("FindByID", mock.Anything, 2).Return(sampleMovie(), nil).Once()
		ratings.On("AverageRating", mock.Anything, 2).Return(0.0, ratingsErr).Once()

		_, err := uc.Get(context.Background(), 2)

		assert.ErrorIs(t, err, ratingsErr)
		assert.Equal(t, errs.EINTERNAL, errs.ErrorCode(err))
	})
}
