package movie

import (
	"context"
	"time"
)

// Service is the movie facade consumed by the transport layer.
type Service interface {
	CreateMovie(ctx context.Context, in MovieInput) (Movie, error)
	GetMovie(ctx context.Context, id int) (Movie, error)
	ListMovies(ctx context.Context, q ListQuery) ([]Movie, error)
	UpdateMovie(ctx context.Context, id int, in MovieInput) (Movie, error)
	DeleteMovie(ctx context.Context, id int) error
}

// Repository is the persistence port for movie records.
type Repository interface {
	Create(ctx context.Context, m Movie) (Movie, error)
	Get(ctx context.Context, id int) (Movie, error)
	List(ctx context.Context, q ListQuery) ([]Movie, error)
	Update(ctx context.Context, m Movie) (Movie, error)
	Delete(ctx context.Context, id int) error
}

// PosterUpload carries the bytes of a poster file supplied by a client.
type PosterUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// PosterResolver turns an uploaded poster file into a stable image URL.
type PosterResolver interface {
	Resolve(ctx context.Context, up PosterUpload) (string, error)
}

// MovieInput is the payload of a create or update request. PosterFile takes
// precedence over PosterURL; when both are absent on update, the existing
// poster is preserved.
type MovieInput struct {
	Title      string
	Genre      string
	Rating     *int
	PosterURL  string
	PosterFile *PosterUpload
}

type Usecase struct {
	r        Repository
	resolver PosterResolver
}

func NewUsecase(r Repository, resolver PosterResolver) *Usecase {
	return &Usecase{r: r, resolver: resolver}
}

// CreateMovie validates the input, resolves the poster image and persists a
// new record. Validation runs before any upload or write happens.
func (uc *Usecase) CreateMovie(ctx context.Context, in MovieInput) (Movie, error) {
	m := Movie{
		Title:  in.Title,
		Genre:  in.Genre,
		Rating: in.Rating,
	}
	if err := m.Validate(); err != nil {
		return Movie{}, err
	}

	poster, err := uc.resolvePoster(ctx, in, "")
	if err != nil {
		return Movie{}, err
	}
	m.PosterImage = poster

	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	return uc.r.Create(ctx, m)
}

func (uc *Usecase) GetMovie(ctx context.Context, id int) (Movie, error) {
	return uc.r.Get(ctx, id)
}

func (uc *Usecase) ListMovies(ctx context.Context, q ListQuery) ([]Movie, error) {
	return uc.r.List(ctx, q)
}

// UpdateMovie replaces title, genre and rating of an existing record.
// The poster image is the only field with preserve-if-absent semantics:
// it changes only when a new file or URL is supplied.
func (uc *Usecase) UpdateMovie(ctx context.Context, id int, in MovieInput) (Movie, error) {
	existing, err := uc.r.Get(ctx, id)
	if err != nil {
		return Movie{}, err
	}

	m := Movie{
		ID:        id,
		Title:     in.Title,
		Genre:     in.Genre,
		Rating:    in.Rating,
		CreatedAt: existing.CreatedAt,
	}
	if err := m.Validate(); err != nil {
		return Movie{}, err
	}

	poster, err := uc.resolvePoster(ctx, in, existing.PosterImage)
	if err != nil {
		return Movie{}, err
	}
	m.PosterImage = poster
	m.UpdatedAt = time.Now().UTC()

	return uc.r.Update(ctx, m)
}

func (uc *Usecase) DeleteMovie(ctx context.Context, id int) error {
	return uc.r.Delete(ctx, id)
}

func (uc *Usecase) resolvePoster(ctx context.Context, in MovieInput, current string) (string, error) {
	if in.PosterFile != nil {
		return uc.resolver.Resolve(ctx, *in.PosterFile)
	}
	if in.PosterURL != "" {
		return in.PosterURL, nil
	}
	return current, nil
}
