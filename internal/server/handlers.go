package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"treeline/internal/errors"
)

// handleError converts errors to appropriate HTTP responses
func handleError(c echo.Context, err error, defaultMessage string) error {
	if te, ok := err.(*errors.TreelineError); ok {
		return echo.NewHTTPError(te.GetHTTPStatus(), te.Error())
	}

	if strings.Contains(err.Error(), "not found") {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("%s: %v", defaultMessage, err))
	}

	return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("%s: %v", defaultMessage, err))
}

// ErrorHandler is the custom echo error handler
func ErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	message := "Internal server error"

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	}

	if !c.Response().Committed {
		reqID, _ := c.Get("request_id").(string)
		if c.Request().Method == http.MethodHead {
			c.NoContent(code)
		} else {
			c.JSON(code, ErrorResponse{Error: message, RequestID: reqID})
		}
	}
}

// handleHealth reports server and database health
func (s *Server) handleHealth(c echo.Context) error {
	dbStatus := "not configured"
	if s.database != nil {
		dbStatus = "ok"
		if err := s.database.HealthCheck(c.Request().Context()); err != nil {
			dbStatus = "unhealthy: " + err.Error()
		}
	}

	return c.JSON(http.StatusOK, HealthResponse{
		Status:   "ok",
		Uptime:   time.Since(s.startTime).Round(time.Second).String(),
		Database: dbStatus,
	})
}

// handleListWorktrees returns all worktrees of the repository
func (s *Server) handleListWorktrees(c echo.Context) error {
	worktrees, err := s.worktreeOps.List(c.Request().Context())
	if err != nil {
		return handleError(c, err, "Failed to list worktrees")
	}

	resp := make([]WorktreeResponse, 0, len(worktrees))
	for _, wt := range worktrees {
		resp = append(resp, WorktreeResponse{
			Name:     wt.Name(),
			Path:     wt.Path,
			Branch:   wt.Branch,
			Commit:   wt.Commit,
			IsMain:   wt.IsMain,
			IsLocked: wt.IsLocked,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// handleListRuns returns recent run history, newest first
func (s *Server) handleListRuns(c echo.Context) error {
	if s.runRepo == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "run history not available")
	}

	limit := 50
	if l := c.QueryParam("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = parsed
	}

	runs, err := s.runRepo.ListRunsWithContexts(c.Request().Context(), limit)
	if err != nil {
		return handleError(c, err, "Failed to list runs")
	}
	return c.JSON(http.StatusOK, runs)
}

// handleRefresh runs the worktree reconciliation pass
func (s *Server) handleRefresh(c echo.Context) error {
	if err := s.runner.Refresh(c.Request().Context()); err != nil {
		return handleError(c, err, "Refresh failed")
	}
	return c.JSON(http.StatusOK, RefreshResponse{
		Status:     "ok",
		FinishedAt: time.Now(),
	})
}
