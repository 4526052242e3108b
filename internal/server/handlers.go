package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Bixxler/nextech/internal/debuglog"
	"github.com/Bixxler/nextech/internal/search"
	"github.com/Bixxler/nextech/internal/stories"
	"github.com/Bixxler/nextech/internal/story"
)

// Client-facing error messages. Internal error text is only logged.
const (
	msgUpstream   = "error while fetching stories from the API"
	msgUnexpected = "an unexpected error occurred"
	msgNotFound   = "no stories found"
)

const maxSearchLimit = 100

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(c echo.Context) error {
	resp := map[string]interface{}{
		"status": "healthy",
	}
	if stats, ok := s.index.(search.DebugStatser); ok {
		if n, err := stats.DocCount(); err == nil {
			resp["indexed"] = n
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// listStories serves the cached list, optionally filtered by q and paginated
// when page is given.
func (s *Server) listStories(c echo.Context) error {
	page, size, err := pageParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	snap, err := s.svc.Snapshot(c.Request().Context())
	if err != nil {
		return s.serviceError(c, err)
	}

	result := story.Filter(snap.Stories, c.QueryParam("q"))
	if len(result) == 0 {
		return c.JSON(http.StatusNotFound, errorResponse{Error: msgNotFound})
	}

	s.cacheHeaders(c, snap)
	if page > 0 {
		return c.JSON(http.StatusOK, story.Paginate(result, page, size))
	}
	return c.JSON(http.StatusOK, result)
}

// searchStories ranks the cached list against q.
func (s *Server) searchStories(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "missing query parameter q"})
	}

	limit := search.DefaultLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
		}
		limit = min(n, maxSearchLimit)
	}

	snap, err := s.svc.Snapshot(c.Request().Context())
	if err != nil {
		return s.serviceError(c, err)
	}

	var result []story.Story
	indexed := false
	if s.index != nil {
		if _, err := s.index.Sync(snap.FetchedAt, snap.Stories); err != nil {
			return s.serviceError(c, err)
		}
		if result, indexed, err = s.index.SearchAt(snap.FetchedAt, q, limit); err != nil {
			return s.serviceError(c, err)
		}
	}
	// without an index, or when it already holds a newer list than snap
	if !indexed {
		result = story.Filter(snap.Stories, q)
		if len(result) > limit {
			result = result[:limit]
		}
	}

	if len(result) == 0 {
		return c.JSON(http.StatusNotFound, errorResponse{Error: msgNotFound})
	}

	s.cacheHeaders(c, snap)
	return c.JSON(http.StatusOK, result)
}

func (s *Server) cacheHeaders(c echo.Context, snap stories.Snapshot) {
	h := c.Response().Header()
	h.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(s.svc.TTL().Seconds())))
	if snap.Stale {
		h.Set("X-Cache", "stale")
	} else {
		h.Set("X-Cache", "fresh")
	}
}

// serviceError maps a failure to a 500 with a message safe to show clients.
func (s *Server) serviceError(c echo.Context, err error) error {
	msg := msgUnexpected
	if errors.Is(err, stories.ErrUpstream) {
		msg = msgUpstream
	}
	debuglog.WithFields(map[string]interface{}{
		"uri":   c.Request().RequestURI,
		"error": err,
	}).Errorf("serving stories failed")
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: msg})
}

// pageParams reads page and size. page is 0 when absent.
func pageParams(c echo.Context) (page, size int, err error) {
	if raw := c.QueryParam("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, errors.New("page must be a positive integer")
		}
	}
	if raw := c.QueryParam("size"); raw != "" {
		size, err = strconv.Atoi(raw)
		if err != nil || size < 1 {
			return 0, 0, errors.New("size must be a positive integer")
		}
	}
	return page, size, nil
}
