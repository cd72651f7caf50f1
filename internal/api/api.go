// Package api exposes the expense tracker over JSON HTTP using fiber.
// Handlers translate between wire types and services; domain errors are
// mapped to status codes in one place so every route replies with the
// same {"error": "..."} shape.
package api

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/divvykit/divvy/internal/auth"
	"github.com/divvykit/divvy/internal/calculator"
	"github.com/divvykit/divvy/internal/models"
	"github.com/divvykit/divvy/internal/service"
	"github.com/divvykit/divvy/internal/storage"
)

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Projects *service.ProjectService
	Members  *service.MemberService
	Bills    *service.BillService
	Ledger   *service.LedgerService
	Tokens   *auth.TokenManager
	Store    storage.Store

	// RateLimitMax caps project creations per client and window; zero
	// disables the limiter.
	RateLimitMax    int
	RateLimitWindow time.Duration
}

type server struct {
	projects *service.ProjectService
	members  *service.MemberService
	bills    *service.BillService
	ledger   *service.LedgerService
	tokens   *auth.TokenManager
	store    storage.Store
}

// New builds the fiber app with all routes registered.
func New(deps Deps) *fiber.App {
	s := &server{
		projects: deps.Projects,
		members:  deps.Members,
		bills:    deps.Bills,
		ledger:   deps.Ledger,
		tokens:   deps.Tokens,
		store:    deps.Store,
	}

	app := fiber.New(fiber.Config{
		AppName:               "divvy",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(requestID())
	app.Use(requestLogger())

	app.Get("/healthz", s.healthz)

	api := app.Group("/api")
	authed := s.requireProject()

	api.Post("/projects", rateLimit(deps.RateLimitMax, deps.RateLimitWindow), s.createProject)
	api.Post("/projects/:id/token", authed, s.issueToken)
	api.Get("/projects/:id", authed, s.getProject)
	api.Put("/projects/:id", authed, s.updateProject)
	api.Delete("/projects/:id", authed, s.deleteProject)

	api.Get("/projects/:id/members", authed, s.listMembers)
	api.Post("/projects/:id/members", authed, s.addMember)
	api.Put("/projects/:id/members/:mid", authed, s.updateMember)
	api.Delete("/projects/:id/members/:mid", authed, s.removeMember)

	api.Get("/projects/:id/bills", authed, s.listBills)
	api.Post("/projects/:id/bills", authed, s.addBill)
	api.Get("/projects/:id/bills/:bid", authed, s.getBill)
	api.Put("/projects/:id/bills/:bid", authed, s.updateBill)
	api.Delete("/projects/:id/bills/:bid", authed, s.deleteBill)

	api.Get("/projects/:id/balances", authed, s.getBalances)
	api.Get("/projects/:id/statistics", authed, s.getStatistics)
	api.Get("/projects/:id/settlement", authed, s.getSettlement)

	api.Get("/projects/:id/export/bills.json", authed, s.exportBillsJSON)
	api.Get("/projects/:id/export/bills.csv", authed, s.exportBillsCSV)
	api.Get("/projects/:id/export/settlement.json", authed, s.exportSettlementJSON)
	api.Get("/projects/:id/export/settlement.csv", authed, s.exportSettlementCSV)

	return app
}

// rateLimit caps requests per client ip; max <= 0 disables it.
func rateLimit(max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{Max: max, Expiration: window})
}

// statusFor maps an error to the HTTP status it should produce.
func statusFor(err error) int {
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, storage.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, storage.ErrConflict),
		errors.Is(err, service.ErrNameTaken):
		return fiber.StatusConflict
	case errors.Is(err, models.ErrInvalidProject),
		errors.Is(err, models.ErrInvalidMember),
		errors.Is(err, models.ErrInvalidBill),
		errors.Is(err, calculator.ErrInvalidBill),
		errors.Is(err, service.ErrCurrencyMismatch),
		errors.Is(err, service.ErrMemberDeactivated):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	message := err.Error()
	if code == fiber.StatusInternalServerError {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		message = "internal server error"
	}
	return c.Status(code).JSON(fiber.Map{"error": message})
}

func (s *server) healthz(c *fiber.Ctx) error {
	if err := s.store.Ping(c.Context()); err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "store unreachable")
	}
	return c.JSON(fiber.Map{"ok": true})
}
