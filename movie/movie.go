package movie

import (
	"time"
	"unicode/utf8"

	"moviecatalog/errs"
)

// MaxTitleLength is the maximum accepted title length, counted in characters.
const MaxTitleLength = 200

var (
	ErrTitleRequired = errs.Errorf(errs.EINVALID, "title is required")
	ErrTitleTooLong  = errs.Errorf(errs.EINVALID, "title must be at most %d characters", MaxTitleLength)
	ErrRatingRange   = errs.Errorf(errs.EINVALID, "rating must be between 1 and 5")
)

// Movie is the catalog record. Genre and PosterImage are optional free-form
// strings; Rating is nil when no rating has been given.
type Movie struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Genre       string    `json:"genre"`
	Rating      *int      `json:"rating"`
	PosterImage string    `json:"posterImage"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (m Movie) Validate() error {
	if m.Title == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(m.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if m.Rating != nil && (*m.Rating < 1 || *m.Rating > 5) {
		return ErrRatingRange
	}
	return nil
}
