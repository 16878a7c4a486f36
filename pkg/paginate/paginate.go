// Package paginate normalizes page/limit/sortBy requests and builds the
// paginated envelope (data, meta, links) returned by list endpoints.
package paginate

import (
	"encoding/json"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"movieapi/errs"
)

type Direction string

const (
	ASC  Direction = "ASC"
	DESC Direction = "DESC"
)

var (
	ErrInvalidSortBy     = errs.Errorf(errs.EINVALID, "invalid sortBy, expected column:ASC or column:DESC")
	ErrInvalidSortColumn = errs.Errorf(errs.EINVALID, "sortBy column is not sortable")
)

// SortBy is a single ordering term. It encodes to JSON as a [column, direction] pair.
type SortBy struct {
	Column    string
	Direction Direction
}

func (s SortBy) String() string {
	return s.Column + ":" + string(s.Direction)
}

func (s SortBy) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{s.Column, string(s.Direction)})
}

func (s *SortBy) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	s.Column, s.Direction = pair[0], Direction(pair[1])
	return nil
}

// ParseSortBy parses "column:DIRECTION". The direction is case-insensitive
// and defaults to ASC when omitted.
func ParseSortBy(raw string) (SortBy, error) {
	column, direction, found := strings.Cut(strings.TrimSpace(raw), ":")
	if column == "" {
		return SortBy{}, ErrInvalidSortBy
	}
	if !found {
		return SortBy{Column: column, Direction: ASC}, nil
	}

	switch d := Direction(strings.ToUpper(direction)); d {
	case ASC, DESC:
		return SortBy{Column: column, Direction: d}, nil
	default:
		return SortBy{}, ErrInvalidSortBy
	}
}

// Config describes what a paginated endpoint accepts.
type Config struct {
	SortableColumns []string
	DefaultSortBy   []SortBy
	DefaultLimit    int
	MaxLimit        int
}

// Query is a page request. Path is the absolute URL (without query string)
// that navigation links are built from.
type Query struct {
	Page   int
	Limit  int
	SortBy []SortBy
	Path   string
}

// Offset returns the number of rows to skip for the requested page. It
// saturates at math.MaxInt instead of overflowing.
func (q Query) Offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// PastEnd reports whether the page starts after the last of total items.
func (q Query) PastEnd(total int64) bool {
	return total <= 0 || int64(q.Offset()) >= total
}

// Normalize clamps page and limit into range and checks sort columns
// against the allow-list, falling back to the configured defaults.
func (c Config) Normalize(q Query) (Query, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = c.DefaultLimit
	}
	if c.MaxLimit > 0 && q.Limit > c.MaxLimit {
		q.Limit = c.MaxLimit
	}
	// keeps (Page-1)*Limit and Page+1 within int
	if q.Limit > 0 && q.Page > math.MaxInt/q.Limit {
		q.Page = math.MaxInt / q.Limit
	}

	if len(q.SortBy) == 0 {
		q.SortBy = slices.Clone(c.DefaultSortBy)
		return q, nil
	}

	sorts := make([]SortBy, 0, len(q.SortBy))
	for _, s := range q.SortBy {
		if !slices.Contains(c.SortableColumns, s.Column) {
			return Query{}, errs.Errorf(errs.EINVALID, "%s: %q (allowed: %s)",
				ErrInvalidSortColumn.Message, s.Column, strings.Join(c.SortableColumns, ", "))
		}
		if s.Direction != DESC {
			s.Direction = ASC
		}
		sorts = append(sorts, s)
	}
	q.SortBy = sorts
	return q, nil
}

type Meta struct {
	ItemsPerPage int      `json:"itemsPerPage"`
	TotalItems   int64    `json:"totalItems"`
	CurrentPage  int      `json:"currentPage"`
	TotalPages   int      `json:"totalPages"`
	SortBy       []SortBy `json:"sortBy"`
}

type Links struct {
	First    string `json:"first"`
	Previous string `json:"previous,omitempty"`
	Current  string `json:"current"`
	Next     string `json:"next,omitempty"`
	Last     string `json:"last"`
}

type Paginated[T any] struct {
	Data  []T   `json:"data"`
	Meta  Meta  `json:"meta"`
	Links Links `json:"links"`
}

// New assembles a page from a normalized query, the rows of that page and
// the total number of rows matching the query. A page past the end yields
// empty data with the real total.
func New[T any](q Query, data []T, total int64) Paginated[T] {
	if data == nil {
		data = []T{}
	}

	totalPages := 0
	if q.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(q.Limit)))
	}

	links := Links{
		First:   link(q, 1),
		Current: link(q, q.Page),
		Last:    link(q, max(totalPages, 1)),
	}
	if q.Page > 1 {
		links.Previous = link(q, q.Page-1)
	}
	if q.Page < totalPages {
		links.Next = link(q, q.Page+1)
	}

	return Paginated[T]{
		Data: data,
		Meta: Meta{
			ItemsPerPage: q.Limit,
			TotalItems:   total,
			CurrentPage:  q.Page,
			TotalPages:   totalPages,
			SortBy:       q.SortBy,
		},
		Links: links,
	}
}

// Map converts the rows of a page, keeping meta and links.
func Map[T, U any](p Paginated[T], fn func(T) U) Paginated[U] {
	data := make([]U, len(p.Data))
	for i, item := range p.Data {
		data[i] = fn(item)
	}
	return Paginated[U]{Data: data, Meta: p.Meta, Links: p.Links}
}

func link(q Query, page int) string {
	var b strings.Builder
	b.WriteString(q.Path)
	b.WriteString("?page=")
	b.WriteString(strconv.Itoa(page))
	b.WriteString("&limit=")
	b.WriteString(strconv.Itoa(q.Limit))
	for _, s := range q.SortBy {
		b.WriteString("&sortBy=")
		b.WriteString(url.QueryEscape(s.Column))
		b.WriteString(":")
		b.WriteString(string(s.Direction))
	}
	return b.String()
}
