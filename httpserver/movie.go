package httpserver

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"moviecatalog/errs"
	"moviecatalog/movie"
)

// Default page window applied when a client sends no pagination parameters.
// Explicit zero or unparseable values disable pagination instead; clients
// use that to fetch the full catalog.
const (
	defaultPage     = 1
	defaultPageSize = 10
)

func (s *Server) RegisterMovieRoutes(g *echo.Group) {
	g.GET("/movies", s.handleListMovies)
	g.GET("/movies/:id", s.handleGetMovie)
	g.POST("/movies", s.handleCreateMovie)
	g.PUT("/movies/:id", s.handleUpdateMovie)
	g.DELETE("/movies/:id", s.handleDeleteMovie)
}

// handleListMovies godoc
// @Summary List Movies
// @Description List movies with optional title search, genre filter, sorting and pagination
// @Tags movies
// @Produce json
// @Param q query string false "Title search (case-insensitive substring)"
// @Param genre query string false "Genre filter (case-insensitive exact match)"
// @Param sort query string false "Sort order: title_asc, title_desc, rating_asc, rating_desc"
// @Param page query int false "Page number, default 1"
// @Param pageSize query int false "Page size, default 10"
// @Success 200 {array} movie.Movie
// @Router /api/movies [get]
func (s *Server) handleListMovies(c echo.Context) error {
	q := movie.ListQuery{
		Search:   strings.TrimSpace(c.QueryParam("q")),
		Genre:    strings.TrimSpace(c.QueryParam("genre")),
		Sort:     movie.ParseSortKey(c.QueryParam("sort")),
		Page:     intParam(c, "page", defaultPage),
		PageSize: intParam(c, "pageSize", defaultPageSize),
	}

	movies, err := s.MovieService.ListMovies(c.Request().Context(), q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, movies)
}

// handleGetMovie godoc
// @Summary Get Movie
// @Tags movies
// @Produce json
// @Param id path int true "Movie ID"
// @Success 200 {object} movie.Movie
// @Failure 404 {object} map[string]string
// @Router /api/movies/{id} [get]
func (s *Server) handleGetMovie(c echo.Context) error {
	id, err := movieID(c)
	if err != nil {
		return err
	}

	m, err := s.MovieService.GetMovie(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, m)
}

// handleCreateMovie godoc
// @Summary Create Movie
// @Description Create a movie from JSON or multipart form data (with optional poster file)
// @Tags movies
// @Accept json
// @Accept mpfd
// @Produce json
// @Success 201 {object} movie.Movie
// @Failure 400 {object} map[string]string
// @Router /api/movies [post]
func (s *Server) handleCreateMovie(c echo.Context) error {
	in, err := bindMovieInput(c)
	if err != nil {
		return err
	}

	m, err := s.MovieService.CreateMovie(c.Request().Context(), in)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/api/movies/%d", m.ID))
	return c.JSON(http.StatusCreated, m)
}

// handleUpdateMovie godoc
// @Summary Update Movie
// @Description Full replacement of title, genre and rating; poster changes only when a new file or URL is supplied
// @Tags movies
// @Accept json
// @Accept mpfd
// @Produce json
// @Param id path int true "Movie ID"
// @Success 200 {object} movie.Movie
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/movies/{id} [put]
func (s *Server) handleUpdateMovie(c echo.Context) error {
	id, err := movieID(c)
	if err != nil {
		return err
	}

	in, err := bindMovieInput(c)
	if err != nil {
		return err
	}

	m, err := s.MovieService.UpdateMovie(c.Request().Context(), id, in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, m)
}

// handleDeleteMovie godoc
// @Summary Delete Movie
// @Tags movies
// @Param id path int true "Movie ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/movies/{id} [delete]
func (s *Server) handleDeleteMovie(c echo.Context) error {
	id, err := movieID(c)
	if err != nil {
		return err
	}

	if err := s.MovieService.DeleteMovie(c.Request().Context(), id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func movieID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, errs.Errorf(errs.EINVALID, "invalid movie id %q", c.Param("id"))
	}
	return id, nil
}

// intParam returns fallback when the parameter is absent and 0 when it does
// not parse, so malformed pagination input disables pagination rather than
// failing the request.
func intParam(c echo.Context, name string, fallback int) int {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}
