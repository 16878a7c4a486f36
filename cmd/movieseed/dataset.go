package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"movieapi/movie"
)

var errMissingColumns = errors.New("missing required columns in csv header")

// header maps column names to their index in a record.
type header map[string]int

func readHeader(reader *csv.Reader, required ...string) (header, error) {
	names, err := reader.Read()
	if err != nil {
		return nil, err
	}

	h := make(header, len(names))
	for i, name := range names {
		h[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range required {
		if _, ok := h[name]; !ok {
			return nil, fmt.Errorf("%w: %s", errMissingColumns, name)
		}
	}
	return h, nil
}

func (h header) get(record []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseMovieRecord(h header, _ int, record []string) (movie.Movie, error) {
	id, err := strconv.Atoi(h.get(record, "movieId"))
	if err != nil {
		return movie.Movie{}, fmt.Errorf("movieId: %w", err)
	}

	m := movie.Movie{
		MovieID:     id,
		IMDbID:      h.get(record, "imdbId"),
		Title:       h.get(record, "title"),
		Overview:    h.get(record, "overview"),
		ReleaseDate: h.get(record, "releaseDate"),
		Language:    h.get(record, "language"),
		Status:      h.get(record, "status"),
	}
	if m.Budget, err = parseAmount(h.get(record, "budget")); err != nil {
		return movie.Movie{}, fmt.Errorf("movie %d budget: %w", id, err)
	}
	if m.Revenue, err = parseAmount(h.get(record, "revenue")); err != nil {
		return movie.Movie{}, fmt.Errorf("movie %d revenue: %w", id, err)
	}
	if raw := h.get(record, "runtime"); raw != "" {
		runtime, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return movie.Movie{}, fmt.Errorf("movie %d runtime: %w", id, err)
		}
		m.Runtime = &runtime
	}
	if err := decodeList(h.get(record, "genres"), &m.Genres); err != nil {
		return movie.Movie{}, fmt.Errorf("movie %d genres: %w", id, err)
	}
	if err := decodeList(repairCompanies(h.get(record, "productionCompanies")), &m.ProductionCompanies); err != nil {
		return movie.Movie{}, fmt.Errorf("movie %d productionCompanies: %w", id, err)
	}

	return m, nil
}

// parseRatingRecord reads one rating. Without a ratingId column the record
// number becomes the id, so importing the same file twice does not add
// ratings twice.
func parseRatingRecord(h header, row int, record []string) (movie.Rating, error) {
	r := movie.Rating{RatingID: int64(row)}
	var err error
	if raw := h.get(record, "ratingId"); raw != "" {
		if r.RatingID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return r, fmt.Errorf("ratingId: %w", err)
		}
	}
	if r.UserID, err = strconv.Atoi(h.get(record, "userId")); err != nil {
		return r, fmt.Errorf("userId: %w", err)
	}
	if r.MovieID, err = strconv.Atoi(h.get(record, "movieId")); err != nil {
		return r, fmt.Errorf("movieId: %w", err)
	}
	if r.Value, err = strconv.ParseFloat(h.get(record, "rating"), 64); err != nil {
		return r, fmt.Errorf("rating: %w", err)
	}
	if raw := h.get(record, "timestamp"); raw != "" {
		if r.Timestamp, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return r, fmt.Errorf("timestamp: %w", err)
		}
	}
	return r, nil
}

// parseAmount reads an optional money column. Some exports write amounts as
// floats ("1000000.0").
func parseAmount(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return &v, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	v := int64(f)
	return &v, nil
}

func decodeList[T any](raw string, dst *[]T) error {
	if raw == "" || raw == "null" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}

// repairCompanies fixes production company lists exported with unescaped
// double quotes inside names, e.g. {"name": "Studio "Gorky" Ltd"}. A quote
// inside a string value that is not followed by optional spaces and then ','
// or '}' becomes a single quote. Literal \xa0 sequences are removed.
// Valid JSON is returned unchanged.
func repairCompanies(raw string) string {
	if raw == "" || json.Valid([]byte(raw)) {
		return raw
	}

	var b strings.Builder
	b.Grow(len(raw))

	inValue := false
	afterColon := false
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		switch {
		case inValue && ch == '"':
			if closesValue(raw[i+1:]) {
				inValue = false
				b.WriteByte(ch)
			} else {
				b.WriteByte('\'')
			}
			continue
		case inValue:
		case ch == ':':
			afterColon = true
		case ch == '"' && afterColon:
			inValue = true
			afterColon = false
		case ch != ' ' && ch != '\t':
			afterColon = false
		}
		b.WriteByte(ch)
	}

	return strings.ReplaceAll(b.String(), `\xa0`, "")
}

func closesValue(rest string) bool {
	rest = strings.TrimLeft(rest, " \t\r\n")
	return rest != "" && (rest[0] == ',' || rest[0] == '}')
}
