package movie

import "movieapi/errs"

var (
	ErrMovieNotFound = errs.Errorf(errs.ENOTFOUND, "Movie not found")
	ErrInvalidGenre  = errs.Errorf(errs.EINVALID, "genre must not be blank")
)

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type ProductionCompany struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Movie is a catalog record. MovieID is the key ratings are joined on.
// Budget, Revenue and Runtime are nil when unknown.
type Movie struct {
	MovieID             int
	IMDbID              string
	Title               string
	Overview            string
	ProductionCompanies []ProductionCompany
	ReleaseDate         string
	Budget              *int64
	Revenue             *int64
	Runtime             *float64
	Language            string
	Genres              []Genre
	Status              string
}

// Rating is a single user's score for a movie. Ratings are never updated
// through this service.
type Rating struct {
	RatingID  int64
	UserID    int
	MovieID   int
	Value     float64
	Timestamp int64
}

// Filter narrows a movie listing. Nil fields do not filter.
type Filter struct {
	// Year matches movies whose release date starts with the four-digit year.
	Year *int
	// Genre matches movies that list a genre with exactly this name.
	Genre *string
}
