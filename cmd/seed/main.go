// Command seed populates the movie catalog. Without arguments it inserts a
// handful of sample movies into an empty database; with -csv it bulk-imports
// movies from a CSV file with title, genre, rating and posterImage columns.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/gorm"

	"moviecatalog/movie"
	"moviecatalog/pkg/config"
	"moviecatalog/postgres"
)

func main() {
	var (
		csvPath string
		limit   int
	)

	flag.StringVar(&csvPath, "csv", "", "Path to a movie CSV file (title,genre,rating,posterImage)")
	flag.IntVar(&limit, "limit", 0, "Limit number of rows to import (0 = all)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("load config failed", "error", err)
		os.Exit(1)
	}

	db, err := postgres.NewConnection(postgres.Options{
		DBName:   cfg.DB.Name,
		DBUser:   cfg.DB.User,
		Password: cfg.DB.Pass,
		Host:     cfg.DB.Host,
		Port:     fmt.Sprintf("%d", cfg.DB.Port),
		SSLMode:  cfg.DB.EnableSSL,
	})
	if err != nil {
		slog.Error("cannot open postgres connection", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	repo := postgres.NewMovieRepository(db)

	if csvPath != "" {
		count, err := importCSV(ctx, repo, csvPath, limit)
		if err != nil {
			slog.Error("import failed", "error", err)
			os.Exit(1)
		}
		slog.Info("import completed", "rows", count)
		return
	}

	count, err := seedSampleMovies(ctx, db, repo)
	if err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
	if count == 0 {
		slog.Info("database already contains movies, skipping seed")
		return
	}
	slog.Info("seed completed", "movies", count)
}

// seedSampleMovies inserts a starter catalog into an empty database. An
// existing catalog is left untouched.
func seedSampleMovies(ctx context.Context, db *gorm.DB, repo *postgres.MovieRepository) (int, error) {
	var existing int64
	if err := db.WithContext(ctx).Table("movies").Count(&existing).Error; err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	samples := []struct {
		title   string
		genre   string
		rating  int
		poster  string
		daysAgo int
	}{
		{"The Shawshank Redemption", "Drama", 5, "https://image.tmdb.org/t/p/w500/q6y0Go1tsGEsmtFryDOJo3dEmqu.jpg", 10},
		{"The Godfather", "Crime", 5, "https://image.tmdb.org/t/p/w500/3bhkrj58Vtu7enYsRolD1fZdja1.jpg", 8},
		{"The Dark Knight", "Action", 5, "https://image.tmdb.org/t/p/w500/qJ2tW6WMUDux911r6m7haRef0WH.jpg", 5},
		{"Inception", "Sci-Fi", 4, "https://image.tmdb.org/t/p/w500/9gk7adHYeDvHkCSEqAvQNLV5Uge.jpg", 3},
		{"Pulp Fiction", "Crime", 4, "https://image.tmdb.org/t/p/w500/d5iIlFn5s0ImszYzBPb8JPIfbXD.jpg", 1},
	}

	for _, s := range samples {
		rating := s.rating
		at := now.AddDate(0, 0, -s.daysAgo)
		m := movie.Movie{
			Title:       s.title,
			Genre:       s.genre,
			Rating:      &rating,
			PosterImage: s.poster,
			CreatedAt:   at,
			UpdatedAt:   at,
		}
		if _, err := repo.Create(ctx, m); err != nil {
			return 0, err
		}
	}

	return len(samples), nil
}

func importCSV(ctx context.Context, repo *postgres.MovieRepository, csvPath string, limit int) (int, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	cols, err := parseHeader(reader)
	if err != nil {
		return 0, err
	}

	count := 0
	for limit <= 0 || count < limit {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, err
		}

		m, ok := parseRecord(record, cols)
		if !ok {
			continue
		}
		if err := m.Validate(); err != nil {
			slog.Warn("skipping invalid row", "title", m.Title, "error", err)
			continue
		}

		now := time.Now().UTC()
		m.CreatedAt = now
		m.UpdatedAt = now
		if _, err := repo.Create(ctx, m); err != nil {
			return count, err
		}

		count++
	}

	return count, nil
}

type columns struct {
	title  int
	genre  int
	rating int
	poster int
}

func parseHeader(reader *csv.Reader) (columns, error) {
	header, err := reader.Read()
	if err != nil {
		return columns{}, err
	}

	cols := columns{title: -1, genre: -1, rating: -1, poster: -1}
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "title":
			cols.title = i
		case "genre":
			cols.genre = i
		case "rating":
			cols.rating = i
		case "posterImage":
			cols.poster = i
		}
	}
	if cols.title == -1 {
		return columns{}, errors.New("missing title column in csv header")
	}

	return cols, nil
}

func parseRecord(record []string, cols columns) (movie.Movie, bool) {
	field := func(idx int) string {
		if idx < 0 || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	m := movie.Movie{
		Title:       field(cols.title),
		Genre:       field(cols.genre),
		PosterImage: field(cols.poster),
	}
	if m.Title == "" {
		return movie.Movie{}, false
	}

	if raw := field(cols.rating); raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil {
			return movie.Movie{}, false
		}
		m.Rating = &rating
	}

	return m, true
}
