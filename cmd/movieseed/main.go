package main

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"movieapi/pkg/config"
	"movieapi/postgres"
)

const batchSize = 1000

type options struct {
	moviesPath  string
	ratingsPath string
	zipURL      string
	limit       int
}

func main() {
	var opts options
	flag.StringVar(&opts.moviesPath, "movies", "", "Path to movies.csv")
	flag.StringVar(&opts.ratingsPath, "ratings", "", "Path to ratings.csv")
	flag.StringVar(&opts.zipURL, "url", "", "URL of a zip archive holding movies.csv and ratings.csv")
	flag.IntVar(&opts.limit, "limit", 0, "Limit number of rows to import per file (0 = all)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(context.Background(), opts); err != nil {
		slog.Error("import failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	if opts.zipURL != "" {
		extracted, cleanup, err := downloadAndExtract(opts.zipURL)
		if err != nil {
			return fmt.Errorf("download dataset: %w", err)
		}
		defer cleanup()
		opts = opts.withExtracted(extracted)
	}
	if opts.moviesPath == "" && opts.ratingsPath == "" {
		return errors.New("nothing to import, set -movies, -ratings or -url")
	}

	if opts.moviesPath != "" {
		db, err := postgres.NewConnection(postgres.OptionsFrom(cfg.MoviesDatabase()))
		if err != nil {
			return fmt.Errorf("open movies database: %w", err)
		}
		repo := postgres.NewMovieRepository(db)
		count, err := importCSV(ctx, opts.moviesPath, opts.limit, []string{"movieId", "title"}, parseMovieRecord, repo.SaveMovies)
		if err != nil {
			return fmt.Errorf("import movies: %w", err)
		}
		slog.Info("movies imported", "rows", count)
	}

	if opts.ratingsPath != "" {
		db, err := postgres.NewConnection(postgres.OptionsFrom(cfg.RatingsDatabase()))
		if err != nil {
			return fmt.Errorf("open ratings database: %w", err)
		}
		repo := postgres.NewRatingRepository(db)
		count, err := importCSV(ctx, opts.ratingsPath, opts.limit, []string{"userId", "movieId", "rating"}, parseRatingRecord, repo.SaveRatings)
		if err != nil {
			return fmt.Errorf("import ratings: %w", err)
		}
		slog.Info("ratings imported", "rows", count)
	}

	return nil
}

// withExtracted fills the paths not set on the command line with the files
// extracted from the dataset archive, keyed by base name.
func (o options) withExtracted(extracted map[string]string) options {
	if o.moviesPath == "" {
		o.moviesPath = extracted["movies.csv"]
	}
	if o.ratingsPath == "" {
		o.ratingsPath = extracted["ratings.csv"]
	}
	return o
}

// importCSV parses the file row by row and saves the rows in batches.
// Rows that fail to parse are logged and skipped.
func importCSV[T any](
	ctx context.Context,
	path string,
	limit int,
	required []string,
	parse func(h header, row int, record []string) (T, error),
	save func(context.Context, []T) error,
) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	h, err := readHeader(reader, required...)
	if err != nil {
		return 0, err
	}

	count := 0
	batch := make([]T, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := save(ctx, batch); err != nil {
			return err
		}
		count += len(batch)
		batch = batch[:0]
		return nil
	}

	for row := 1; limit <= 0 || count+len(batch) < limit; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, err
		}

		item, err := parse(h, row, record)
		if err != nil {
			slog.Warn("skipping row", "file", filepath.Base(path), "row", row, "error", err)
			continue
		}

		batch = append(batch, item)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return count, err
			}
		}
	}

	if err := flush(); err != nil {
		return count, err
	}
	return count, nil
}

func downloadAndExtract(zipURL string) (map[string]string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "movieseed-")
	if err != nil {
		return nil, func() {}, err
	}

	cleanup := func() {
		_ = os.RemoveAll(tmpDir)
	}

	zipPath := filepath.Join(tmpDir, "dataset.zip")
	if err := downloadFile(zipURL, zipPath); err != nil {
		cleanup()
		return nil, func() {}, err
	}

	extracted, err := extractCSVs(zipPath, tmpDir, "movies.csv", "ratings.csv")
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	return extracted, cleanup, nil
}

func downloadFile(url, dest string) error {
	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Get(url) // nolint: noctx
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

// extractCSVs copies the named files found anywhere in the archive into
// destDir and returns the written paths keyed by base name.
func extractCSVs(zipPath, destDir string, names ...string) (map[string]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	extracted := make(map[string]string, len(names))
	for _, file := range r.File {
		base := filepath.Base(file.Name)
		if !slices.Contains(names, base) || strings.HasPrefix(file.Name, "__MACOSX") {
			continue
		}
		destPath := filepath.Join(destDir, base)
		if err := extractFile(file, destPath); err != nil {
			return nil, err
		}
		extracted[base] = destPath
	}

	if len(extracted) == 0 {
		return nil, fmt.Errorf("none of %s found in zip", strings.Join(names, ", "))
	}
	return extracted, nil
}

func extractFile(file *zip.File, destPath string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
