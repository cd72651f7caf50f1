package api

import (
	"encoding/base64"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/divvykit/divvy/internal/auth"
	"github.com/divvykit/divvy/internal/metrics"
)

const requestIDHeader = "X-Request-Id"

// requestID tags every request with a uuid, reusing the caller's when
// one is sent.
func requestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals("request_id", id)
		c.Set(requestIDHeader, id)
		return c.Next()
	}
}

// requestLogger writes one slog line per request and feeds the request
// counters. The status of failed requests comes from the error mapping
// since the error handler runs after this middleware returns.
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = statusFor(err)
		}
		elapsed := time.Since(start)
		route := c.Route().Path

		metrics.RequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		metrics.RequestDuration.WithLabelValues(c.Method(), route).Observe(elapsed.Seconds())

		slog.Info("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration", elapsed,
			"request_id", c.Locals("request_id"),
		)
		return err
	}
}

// requireProject guards the per-project routes. Callers authenticate
// either with HTTP Basic (project id and private code) or with a bearer
// token from POST /projects/:id/token. Valid credentials for a project
// other than the one in the path are rejected with 403, never with 404,
// so probing cannot reveal which projects exist.
func (s *server) requireProject() fiber.Handler {
	return func(c *fiber.Ctx) error {
		pathID := c.Params("id")

		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return auth.ErrMissingToken
		}

		scheme, payload, found := strings.Cut(header, " ")
		if !found {
			return auth.ErrInvalidToken
		}

		var authedID string
		switch {
		case strings.EqualFold(scheme, "Basic"):
			raw, err := base64.StdEncoding.DecodeString(payload)
			if err != nil {
				return auth.ErrInvalidCredentials
			}
			projectID, code, ok := strings.Cut(string(raw), ":")
			if !ok {
				return auth.ErrInvalidCredentials
			}
			if _, err := s.projects.Authenticate(c.Context(), projectID, code); err != nil {
				return err
			}
			authedID = projectID
		case strings.EqualFold(scheme, "Bearer"):
			projectID, err := s.tokens.Verify(payload)
			if err != nil {
				return err
			}
			authedID = projectID
		default:
			return auth.ErrInvalidToken
		}

		if authedID != pathID {
			return fiber.NewError(fiber.StatusForbidden, "credentials do not grant access to this project")
		}

		c.Locals("project_id", authedID)
		return c.Next()
	}
}
