package httpserver

import (
	"movieapi/pkg/paginate"
)

// ListMoviesRequest carries the pagination query of the list endpoints.
// sortBy may repeat: ?sortBy=title:ASC&sortBy=releaseDate:DESC
type ListMoviesRequest struct {
	Page   int      `query:"page" validate:"omitempty,min=1"`
	Limit  int      `query:"limit" validate:"omitempty,min=1"`
	SortBy []string `query:"sortBy" validate:"omitempty,dive,sortby"`
}

// ToQuery converts the request into a page query whose links point at path.
// SortBy values are assumed validated.
func (r ListMoviesRequest) ToQuery(path string) paginate.Query {
	q := paginate.Query{
		Page:  r.Page,
		Limit: r.Limit,
		Path:  path,
	}
	for _, raw := range r.SortBy {
		if s, err := paginate.ParseSortBy(raw); err == nil {
			q.SortBy = append(q.SortBy, s)
		}
	}
	return q
}
