package httpserver

import (
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"moviecatalog/errs"
	"moviecatalog/movie"
)

// MovieRequest is the create/update payload. JSON clients send the poster as
// a URL in posterImage; multipart clients send a posterUrl field and/or a
// posterFile part.
type MovieRequest struct {
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Genre       string `json:"genre" form:"genre"`
	Rating      *int   `json:"rating" form:"-" validate:"omitempty,min=1,max=5"`
	PosterImage string `json:"posterImage" form:"posterUrl"`
}

func (r MovieRequest) ToInput(file *movie.PosterUpload) movie.MovieInput {
	return movie.MovieInput{
		Title:      r.Title,
		Genre:      r.Genre,
		Rating:     r.Rating,
		PosterURL:  r.PosterImage,
		PosterFile: file,
	}
}

// bindMovieInput decodes either a JSON body or a multipart form into a
// movie.MovieInput and validates it.
func bindMovieInput(c echo.Context) (movie.MovieInput, error) {
	var (
		req  MovieRequest
		file *movie.PosterUpload
	)

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		if err := bindMultipart(c, &req, &file); err != nil {
			return movie.MovieInput{}, err
		}
	} else {
		if err := c.Bind(&req); err != nil {
			return movie.MovieInput{}, err
		}
	}

	if err := c.Validate(&req); err != nil {
		return movie.MovieInput{}, err
	}

	return req.ToInput(file), nil
}

func bindMultipart(c echo.Context, req *MovieRequest, file **movie.PosterUpload) error {
	req.Title = strings.TrimSpace(c.FormValue("title"))
	req.Genre = strings.TrimSpace(c.FormValue("genre"))
	req.PosterImage = strings.TrimSpace(c.FormValue("posterUrl"))

	if raw := strings.TrimSpace(c.FormValue("rating")); raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil {
			return errs.Errorf(errs.EINVALID, "rating must be an integer")
		}
		req.Rating = &rating
	}

	header, err := c.FormFile("posterFile")
	if err != nil {
		// No poster part in the form; the URL field (if any) decides.
		return nil
	}

	src, err := header.Open()
	if err != nil {
		return errs.Errorf(errs.EINVALID, "cannot read poster file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return errs.Errorf(errs.EINVALID, "cannot read poster file")
	}

	*file = &movie.PosterUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	return nil
}
