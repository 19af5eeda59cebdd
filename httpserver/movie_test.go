package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"moviecatalog/errs"
	"moviecatalog/httpserver"
	"moviecatalog/movie"
	"moviecatalog/pkg/config"
)

type MockMovieService struct {
	mock.Mock
}

func (m *MockMovieService) CreateMovie(ctx context.Context, in movie.MovieInput) (movie.Movie, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(movie.Movie), args.Error(1)
}

func (m *MockMovieService) GetMovie(ctx context.Context, id int) (movie.Movie, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(movie.Movie), args.Error(1)
}

func (m *MockMovieService) ListMovies(ctx context.Context, q movie.ListQuery) ([]movie.Movie, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]movie.Movie), args.Error(1)
}

func (m *MockMovieService) UpdateMovie(ctx context.Context, id int, in movie.MovieInput) (movie.Movie, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(movie.Movie), args.Error(1)
}

func (m *MockMovieService) DeleteMovie(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func testConfig() *config.Config {
	return &config.Config{}
}

func newTestServer() (*httpserver.Server, *MockMovieService) {
	server := httpserver.Default(testConfig())
	svc := new(MockMovieService)
	server.MovieService = svc
	return server, svc
}

func rating(v int) *int { return &v }

func notFound(id int) error {
	return errs.Errorf(errs.ENOTFOUND, "movie with id %d not found", id)
}

func decodeMovie(t *testing.T, rec *httptest.ResponseRecorder) movie.Movie {
	t.Helper()
	var m movie.Movie
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestListMovies(t *testing.T) {
	t.Run("returns 200 with the movie array", func(t *testing.T) {
		server, svc := newTestServer()
		movies := []movie.Movie{
			{ID: 1, Title: "The Godfather", Genre: "Crime", Rating: rating(5)},
			{ID: 2, Title: "Inception", Genre: "Sci-Fi", Rating: rating(4)},
		}
		svc.On("ListMovies", mock.Anything, mock.Anything).Return(movies, nil).Once()

		rec := httptest.NewRecorder()
		server.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/movies", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var got []movie.Movie
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, movies, got)
		svc.AssertExpectations(t)
	})

	t.Run("plumbs query parameters into the list query", func(t *testing.T) {
		server, svc := newTestServer()
		expected := movie.ListQuery{
			Search: "god", Genre: "Crime", Sort: movie.SortTitleDesc, Page: 2, PageSize: 5,
		}
		svc.On("ListMovies", mock.Anything, expected).Return([]movie.Movie{}, nil).Once()

		rec := httptest.NewRecorder()
		server.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
			"/api/movies?q=god&genre=Crime&sort=title_desc&page=2&pageSize=5", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("defaults to page 1 of 10 when pagination is absent", func(t *testing.T) {
		server, svc := newTestServer()
		svc.On("ListMovies", mock.Anything, movie.ListQuery{Page: 1, PageSize: 10}).
			Return([]movie.Movie{}, nil).Once()

		rec := httptest.NewRecorder()
		server.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/movies", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("unparseable pagination values disable pagination instead of failing", func(t *testing.T) {
		server, svc := newTestServer()
		svc.On("ListMovies", mock.Anything, movie.ListQuery{Page: 0, PageSize: 10}).
			Return([]movie.Movie{}, nil).Once()

		rec := httptest.NewRecorder()
		server.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/movies?page=abc", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("unrecognized sort value falls back to the default order", func(t *testing.T) {
		server, svc := newTestServer()
		svc.On("ListMovies", mock.Anything, mock.MatchedBy(func(q movie.ListQuery) bool {
			return q.Sort == movie.SortDefault
		})).Return([]movie.Movie{}, nil).Once()

		rec := httptest.NewRecorder()
		server.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/movies?sort=banana", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})
}

func TestGetMovie(t *testing.T) {
	t.Run("returns 200 with the movie", func(t *testing.T) {
		server, svc := newTestServer()
		svc.On("GetMovie", mock.Anything, 7).Return(movie.Movie{ID: 7, Title: "Jaws"}, nil).Once()

		rec := httptest.NewRecorder()
		server.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/movies/7", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Jaws", decodeMovie(t, rec).Title)
		svc.AssertExpectations(t)
	})

	t.Run("returns 404 for a missing movie", func(t *testing.T) {
		server, svc := newTestServer()
		svc.On("GetMovie", mock.Anything, 99).Return(movie.Movie{}, notFound(99)).Once()

		rec := httptest.NewRecorder()
		server.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/movies/99", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "not found")
	})

	t.Run("returns 400 for a non-numeric id", func(t *testing.T) {
		server, svc := newTestServer()

		rec := httptest.NewRecorder()
		server.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/movies/abc", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "GetMovie")
	})
}

func newJSONRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestCreateMovie(t *testing.T) {
	t.Run("returns 201 with the created movie and a Location header", func(t *testing.T) {
		server, svc := newTestServer()
		created := movie.Movie{
			ID: 42, Title: "Inception", Genre: "Sci-Fi", Rating: rating(5),
			CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
		}
		svc.On("CreateMovie", mock.Anything, movie.MovieInput{
			Title: "Inception", Genre: "Sci-Fi", Rating: rating(5),
		}).Return(created, nil).Once()

		rec := httptest.NewRecorder()
		server.Router.ServeHTTP(rec, newJSONRequest(http.MethodPost, "/api/movies",
			`{"title":"Inception","genre":"Sci-Fi","rating":5}`))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "/api/movies/42", rec.Header().Get(echo.HeaderLocation))
		assert.Equal(t, 42, decodeMovie(t, rec).ID)
		svc.AssertExpectations(t)
	})

	t.Run("passes a poster URL through verbatim", func(t *testing.T) {
		server, svc := newTestServer()
		svc.On("CreateMovie", mock.Anything, mock.MatchedBy(func(in movie.MovieInput) bool {
			return in.PosterURL == "https://example.com/poster.jpg" && in.PosterFile == nil
		})).Return(movie.Movie{ID: 1}, nil).Once()

		rec := httptest.NewRecorder()
		server.Router.ServeHTTP(rec, newJSONRequest(http.MethodPost, "/api/movies",
			`{"title":"Heat","posterImage":"https://example.com/poster.jpg"}`))

		assert.Equal(t, http.StatusCreated, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("returns 400 on validation failure without calling the service", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"empty title", `{"title":"","genre":"Action"}`},
			{"title of 201 characters", `{"title":"` + strings.Repeat("a", 201) + `"}`},
			{"rating above range", `{"title":"Se7en","rating":6}`},
			{"rating below range", `{"title":"Se7en","rating":0}`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server, svc := newTestServer()

				rec := httptest.NewRecorder()
				server.Router.ServeHTTP(rec, newJSONRequest(http.MethodPost, "/api/movies", tt.body))

				assert.Equal(t, http.StatusBadRequest, rec.Code)
				svc.AssertNotCalled(t, "CreateMovie")
			})
		}
	})

	t.Run("returns 400 on malformed JSON", func(t *testing.T) {
		server, svc := newTestServer()

		rec := httptest.NewRecorder()
		server.Router.ServeHTTP(rec, newJSONRequest(http.MethodPost, "/api/movies",
			`{"title": "Broken", invalid json`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "CreateMovie")
	})

	t.Run("accepts a multipart form with a poster file", func(t *testing.T) {
		server, svc := newTestServer()
		svc.On("CreateMovie", mock.Anything, mock.MatchedBy(func(in movie.MovieInput) bool {
			return in.Title == "Dune" &&
				in.Rating != nil && *in.Rating == 4 &&
				in.PosterFile != nil &&
				in.PosterFile.Filename == "poster.png" &&
				string(in.PosterFile.Data) == "fake image bytes"
		})).Return(movie.Movie{ID: 9, Title: "Dune"}, nil).Once()

		body, contentType := multipartBody(t, map[string]string{
			"title":  "Dune",
			"genre":  "Sci-Fi",
			"rating": "4",
		}, "poster.png", "image/png", []byte("fake image bytes"))

		req := httptest.NewRequest(http.MethodPost, "/api/movies", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := httptest.NewRecorder()
		server.Router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("returns 400 for a non-numeric multipart rating", func(t *testing.T) {
		server, svc := newTestServer()

		body, contentType := multipartBody(t, map[string]string{
			"title":  "Dune",
			"rating": "four",
		}, "", "", nil)

		req := httptest.NewRequest(http.MethodPost, "/api/movies", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := httptest.NewRecorder()
		server.Router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "CreateMovie")
	})

	t.Run("surfaces a resolver rejection as 400", func(t *testing.T) {
		server, svc := newTestServer()
		svc.On("CreateMovie", mock.Anything, mock.Anything).
			Return(movie.Movie{}, errs.Errorf(errs.EINVALID, "invalid image file: must be JPEG, PNG, GIF, or WebP")).Once()

		rec := httptest.NewRecorder()
		server.Router.ServeHTTP(rec, newJSONRequest(http.MethodPost, "/api/movies", `{"title":"Alien"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid image file")
	})
}

func TestUpdateMovie(t *testing.T) {
	t.Run("returns 200 with the updated movie", func(t *testing.T) {
		server, svc := newTestServer()
		updated := movie.Movie{ID: 5, Title: "New Title", Genre: "Drama", Rating: rating(3)}
		svc.On("UpdateMovie", mock.Anything, 5, movie.MovieInput{
			Title: "New Title", Genre: "Drama", Rating: rating(3),
		}).Return(updated, nil).Once()

		rec := httptest.NewRecorder()
		server.Router.ServeHTTP(rec, newJSONRequest(http.MethodPut, "/api/movies/5",
			`{"title":"New Title","genre":"Drama","rating":3}`))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "New Title", decodeMovie(t, rec).Title)
		svc.AssertExpectations(t)
	})

	t.Run("returns 404 for a missing movie", func(t *testing.T) {
		server, svc := newTestServer()
		svc.On("UpdateMovie", mock.Anything, 77, mock.Anything).
			Return(movie.Movie{}, notFound(77)).Once()

		rec := httptest.NewRecorder()
		server.Router.ServeHTTP(rec, newJSONRequest(http.MethodPut, "/api/movies/77",
			`{"title":"Whatever"}`))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("returns 400 on validation failure", func(t *testing.T) {
		server, svc := newTestServer()

		rec := httptest.NewRecorder()
		server.Router.ServeHTTP(rec, newJSONRequest(http.MethodPut, "/api/movies/5", `{"title":""}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "UpdateMovie")
	})
}

func TestDeleteMovie(t *testing.T) {
	t.Run("returns 204 with an empty body", func(t *testing.T) {
		server, svc := newTestServer()
		svc.On("DeleteMovie", mock.Anything, 3).Return(nil).Once()

		rec := httptest.NewRecorder()
		server.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/movies/3", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("returns 404 for a missing movie", func(t *testing.T) {
		server, svc := newTestServer()
		svc.On("DeleteMovie", mock.Anything, 8).Return(notFound(8)).Once()

		rec := httptest.NewRecorder()
		server.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/movies/8", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func multipartBody(t *testing.T, fields map[string]string, filename, fileType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}

	if filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="posterFile"; filename=%q`, filename))
		h.Set("Content-Type", fileType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}
