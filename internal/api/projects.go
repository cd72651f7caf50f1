package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/divvykit/divvy/internal/service"
)

func (s *server) createProject(c *fiber.Ctx) error {
	var req createProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}

	project, err := s.projects.Create(c.Context(), service.ProjectParams{
		ID:           req.ID,
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Currency:     req.DefaultCurrency,
		PrivateCode:  req.PrivateCode,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": project.ID})
}

func (s *server) issueToken(c *fiber.Ctx) error {
	token, err := s.projects.IssueToken(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"token": token})
}

// getProject returns the project with its members and the balance of
// each, keyed by member id.
func (s *server) getProject(c *fiber.Ctx) error {
	projectID := c.Params("id")

	project, err := s.projects.Get(c.Context(), projectID)
	if err != nil {
		return err
	}
	rows, err := s.ledger.Balances(c.Context(), projectID)
	if err != nil {
		return err
	}

	members := make([]memberResponse, 0, len(rows))
	balance := make(map[string]float64, len(rows))
	for _, row := range rows {
		members = append(members, toMemberResponse(row.Member))
		balance[strconv.FormatInt(row.Member.ID, 10)] = money(row.Balance)
	}

	return c.JSON(projectResponse{
		ID:              project.ID,
		Name:            project.Name,
		ContactEmail:    project.ContactEmail,
		DefaultCurrency: project.Currency,
		CreatedAt:       project.CreatedAt.UTC().Format(time.RFC3339),
		Members:         members,
		Balance:         balance,
	})
}

func (s *server) updateProject(c *fiber.Ctx) error {
	var req updateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}

	project, err := s.projects.Update(c.Context(), c.Params("id"), service.ProjectParams{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Currency:     req.DefaultCurrency,
		PrivateCode:  req.PrivateCode,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"id":               project.ID,
		"name":             project.Name,
		"contact_email":    project.ContactEmail,
		"default_currency": project.Currency,
	})
}

func (s *server) deleteProject(c *fiber.Ctx) error {
	if err := s.projects.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
