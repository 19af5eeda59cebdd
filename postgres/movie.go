package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"moviecatalog/errs"
	"moviecatalog/movie"
)

// MovieModel represents the database model for movies.
type MovieModel struct {
	ID          int    `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	Genre       string
	Rating      *int
	PosterImage string
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (MovieModel) TableName() string {
	return "movies"
}

// MovieRepository implements movie.Repository on PostgreSQL.
type MovieRepository struct {
	db *gorm.DB
}

// NewMovieRepository creates a new movie repository
func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

func (r *MovieRepository) Create(ctx context.Context, m movie.Movie) (movie.Movie, error) {
	model := toModel(m)
	model.ID = 0
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return movie.Movie{}, err
	}
	return toMovie(model), nil
}

func (r *MovieRepository) Get(ctx context.Context, id int) (movie.Movie, error) {
	var model MovieModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return movie.Movie{}, errs.Errorf(errs.ENOTFOUND, "movie with id %d not found", id)
	}
	if err != nil {
		return movie.Movie{}, err
	}
	return toMovie(model), nil
}

// List composes search, genre filter, ordering and pagination into a single
// query. Title sorts are case-insensitive; a missing rating sorts as 0;
// the default order is newest first. Every ordering appends id ascending so
// the sequence is stable across repeated calls.
func (r *MovieRepository) List(ctx context.Context, q movie.ListQuery) ([]movie.Movie, error) {
	tx := r.db.WithContext(ctx).Model(&MovieModel{})

	if q.Search != "" {
		tx = tx.Where("title ILIKE ?", "%"+escapeLike(q.Search)+"%")
	}
	if q.Genre != "" {
		tx = tx.Where("LOWER(genre) = LOWER(?)", q.Genre)
	}

	switch q.Sort {
	case movie.SortTitleAsc:
		tx = tx.Order("LOWER(title) ASC")
	case movie.SortTitleDesc:
		tx = tx.Order("LOWER(title) DESC")
	case movie.SortRatingAsc:
		tx = tx.Order("COALESCE(rating, 0) ASC")
	case movie.SortRatingDesc:
		tx = tx.Order("COALESCE(rating, 0) DESC")
	default:
		tx = tx.Order("created_at DESC")
	}
	tx = tx.Order("id ASC")

	if q.Paginated() {
		tx = tx.Offset(q.Offset()).Limit(q.PageSize)
	}

	var models []MovieModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}

	movies := make([]movie.Movie, len(models))
	for i, model := range models {
		movies[i] = toMovie(model)
	}
	return movies, nil
}

// Update writes the full replacement record, including fields holding their
// previous values, so the caller's load-apply-persist flow stays explicit.
func (r *MovieRepository) Update(ctx context.Context, m movie.Movie) (movie.Movie, error) {
	model := toModel(m)
	result := r.db.WithContext(ctx).Model(&MovieModel{ID: m.ID}).
		Select("Title", "Genre", "Rating", "PosterImage", "UpdatedAt").
		Updates(&model)
	if result.Error != nil {
		return movie.Movie{}, result.Error
	}
	if result.RowsAffected == 0 {
		return movie.Movie{}, errs.Errorf(errs.ENOTFOUND, "movie with id %d not found", m.ID)
	}
	return r.Get(ctx, m.ID)
}

func (r *MovieRepository) Delete(ctx context.Context, id int) error {
	result := r.db.WithContext(ctx).Delete(&MovieModel{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.Errorf(errs.ENOTFOUND, "movie with id %d not found", id)
	}
	return nil
}

// escapeLike neutralizes LIKE metacharacters so search text is matched
// literally.
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

func toModel(m movie.Movie) MovieModel {
	return MovieModel{
		ID:          m.ID,
		Title:       m.Title,
		Genre:       m.Genre,
		Rating:      m.Rating,
		PosterImage: m.PosterImage,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toMovie(model MovieModel) movie.Movie {
	return movie.Movie{
		ID:          model.ID,
		Title:       model.Title,
		Genre:       model.Genre,
		Rating:      model.Rating,
		PosterImage: model.PosterImage,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
