package postgres

import (
	"context"
	"fmt"

	"movieapi/movie"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RatingModel represents the database model for ratings
type RatingModel struct {
	RatingID  int64   `gorm:"column:rating_id;primaryKey"`
	UserID    int     `gorm:"column:user_id;not null"`
	MovieID   int     `gorm:"column:movie_id;not null;index"`
	Rating    float64 `gorm:"column:rating;not null"`
	Timestamp int64   `gorm:"column:timestamp;not null"`
}

// TableName specifies the table name for GORM
func (RatingModel) TableName() string {
	return "ratings"
}

// RatingRepository implements movie.RatingRepository interface
type RatingRepository struct {
	db *gorm.DB
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// AverageRating returns the mean rating of a movie, 0 when it has no ratings.
func (r *RatingRepository) AverageRating(ctx context.Context, movieID int) (float64, error) {
	var avg float64
	err := r.db.WithContext(ctx).
		Model(&RatingModel{}).
		Select("COALESCE(AVG(rating), 0)").
		Where("movie_id = ?", movieID).
		Scan(&avg).Error
	if err != nil {
		return 0, fmt.Errorf("average rating: %w", err)
	}
	return avg, nil
}

// SaveRatings stores ratings. Ratings carrying an id are upserted by id, the
// last one winning when the input repeats an id; ratings without an id are
// appended. A user may rate the same movie more than once and every rating
// counts towards the average.
func (r *RatingRepository) SaveRatings(ctx context.Context, ratings []movie.Rating) error {
	var withID, withoutID []RatingModel
	for _, rt := range ratings {
		model := RatingModel{
			RatingID:  rt.RatingID,
			UserID:    rt.UserID,
			MovieID:   rt.MovieID,
			Rating:    rt.Value,
			Timestamp: rt.Timestamp,
		}
		if model.RatingID > 0 {
			withID = append(withID, model)
		} else {
			withoutID = append(withoutID, model)
		}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(withID) > 0 {
			withID = lastByKey(withID, func(m RatingModel) int64 { return m.RatingID })
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "rating_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"user_id", "movie_id", "rating", "timestamp"}),
			}).CreateInBatches(&withID, 1000).Error
			if err != nil {
				return fmt.Errorf("upsert ratings: %w", err)
			}
			// keep generated ids clear of explicit ones
			err = tx.Exec("SELECT setval(pg_get_serial_sequence('ratings', 'rating_id'), GREATEST((SELECT MAX(rating_id) FROM ratings), 1))").Error
			if err != nil {
				return fmt.Errorf("advance rating id sequence: %w", err)
			}
		}
		if len(withoutID) > 0 {
			if err := tx.Omit("rating_id").CreateInBatches(&withoutID, 1000).Error; err != nil {
				return fmt.Errorf("insert ratings: %w", err)
			}
		}
		return nil
	})
}
