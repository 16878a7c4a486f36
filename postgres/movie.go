package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"movieapi/movie"
	"movieapi/pkg/paginate"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MovieModel represents the database model for movies.
// Genres and production companies are jsonb arrays of {id, name}.
type MovieModel struct {
	MovieID             int                                       `gorm:"column:movie_id;primaryKey;autoIncrement:false"`
	IMDbID              string                                    `gorm:"column:imdb_id;not null;default:''"`
	Title               string                                    `gorm:"not null"`
	Overview            *string                                   `gorm:"column:overview"`
	ProductionCompanies datatypes.JSONSlice[movie.ProductionCompany] `gorm:"column:production_companies;type:jsonb;not null"`
	ReleaseDate         string                                    `gorm:"column:release_date;not null;default:''"`
	Budget              *int64                                    `gorm:"column:budget"`
	Revenue             *int64                                    `gorm:"column:revenue"`
	Runtime             *float64                                  `gorm:"column:runtime"`
	Language            string                                    `gorm:"column:language;not null;default:''"`
	Genres              datatypes.JSONSlice[movie.Genre]          `gorm:"column:genres;type:jsonb;not null"`
	Status              *string                                   `gorm:"column:status"`
}

// TableName specifies the table name for GORM
func (MovieModel) TableName() string {
	return "movies"
}

// NewMovieModel converts a domain movie into its row.
func NewMovieModel(m movie.Movie) MovieModel {
	model := MovieModel{
		MovieID:             m.MovieID,
		IMDbID:              m.IMDbID,
		Title:               m.Title,
		ProductionCompanies: datatypes.NewJSONSlice(m.ProductionCompanies),
		ReleaseDate:         m.ReleaseDate,
		Budget:              m.Budget,
		Revenue:             m.Revenue,
		Runtime:             m.Runtime,
		Language:            m.Language,
		Genres:              datatypes.NewJSONSlice(m.Genres),
	}
	if model.ProductionCompanies == nil {
		model.ProductionCompanies = datatypes.JSONSlice[movie.ProductionCompany]{}
	}
	if model.Genres == nil {
		model.Genres = datatypes.JSONSlice[movie.Genre]{}
	}
	if m.Overview != "" {
		model.Overview = &m.Overview
	}
	if m.Status != "" {
		model.Status = &m.Status
	}
	return model
}

func (model MovieModel) toMovie() movie.Movie {
	m := movie.Movie{
		MovieID:             model.MovieID,
		IMDbID:              model.IMDbID,
		Title:               model.Title,
		ProductionCompanies: model.ProductionCompanies,
		ReleaseDate:         model.ReleaseDate,
		Budget:              model.Budget,
		Revenue:             model.Revenue,
		Runtime:             model.Runtime,
		Language:            model.Language,
		Genres:              model.Genres,
	}
	if model.Overview != nil {
		m.Overview = *model.Overview
	}
	if model.Status != nil {
		m.Status = *model.Status
	}
	return m
}

// sortColumns maps API sort names to columns.
var sortColumns = map[string]string{
	movie.SortReleaseDate: "release_date",
	movie.SortTitle:       "title",
}

// MovieRepository implements movie.Repository interface
type MovieRepository struct {
	db *gorm.DB
}

// NewMovieRepository creates a new movie repository
func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// Find returns one page of movies matching f together with the number of
// matching movies across all pages.
func (r *MovieRepository) Find(ctx context.Context, f movie.Filter, q paginate.Query) ([]movie.Movie, int64, error) {
	scopes, err := filterScopes(f)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&MovieModel{}).Scopes(scopes...).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count movies: %w", err)
	}
	if q.PastEnd(total) {
		return []movie.Movie{}, total, nil
	}

	var models []MovieModel
	err = r.db.WithContext(ctx).
		Scopes(scopes...).
		Scopes(orderBy(q.SortBy), page(q)).
		Find(&models).Error
	if err != nil {
		return nil, 0, fmt.Errorf("find movies: %w", err)
	}

	movies := make([]movie.Movie, len(models))
	for i, model := range models {
		movies[i] = model.toMovie()
	}
	return movies, total, nil
}

func (r *MovieRepository) FindByID(ctx context.Context, id int) (movie.Movie, error) {
	var model MovieModel
	err := r.db.WithContext(ctx).Where("movie_id = ?", id).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return movie.Movie{}, movie.ErrMovieNotFound
	}
	if err != nil {
		return movie.Movie{}, fmt.Errorf("find movie %d: %w", id, err)
	}
	return model.toMovie(), nil
}

// SaveMovies upserts movies by movie id in batches. When the input repeats
// an id, the last movie wins.
func (r *MovieRepository) SaveMovies(ctx context.Context, movies []movie.Movie) error {
	if len(movies) == 0 {
		return nil
	}

	models := make([]MovieModel, len(movies))
	for i, m := range movies {
		models[i] = NewMovieModel(m)
	}
	models = lastByKey(models, func(m MovieModel) int { return m.MovieID })

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "movie_id"}},
			UpdateAll: true,
		}).
		CreateInBatches(&models, 500).Error
}

func filterScopes(f movie.Filter) ([]func(*gorm.DB) *gorm.DB, error) {
	var scopes []func(*gorm.DB) *gorm.DB
	if f.Year != nil {
		scopes = append(scopes, releasedIn(*f.Year))
	}
	if f.Genre != nil {
		scope, err := hasGenre(*f.Genre)
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, scope)
	}
	return scopes, nil
}

// releasedIn compares the year prefix of the text release date, so malformed
// dates never match.
func releasedIn(year int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("substr(release_date, 1, 4) = ?", strconv.Itoa(year))
	}
}

// hasGenre matches movies whose genres array holds an entry with exactly
// this name.
func hasGenre(name string) (func(*gorm.DB) *gorm.DB, error) {
	contains, err := json.Marshal([]map[string]string{{"name": name}})
	if err != nil {
		return nil, fmt.Errorf("encode genre filter: %w", err)
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("genres @> ?::jsonb", string(contains))
	}, nil
}

func orderBy(sorts []paginate.SortBy) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, s := range sorts {
			column, ok := sortColumns[s.Column]
			if !ok {
				continue
			}
			db = db.Order(clause.OrderByColumn{
				Column: clause.Column{Name: column},
				Desc:   s.Direction == paginate.DESC,
			})
		}
		// stable pages when sort keys tie
		return db.Order("movie_id")
	}
}

func page(q paginate.Query) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(q.Offset()).Limit(q.Limit)
	}
}
