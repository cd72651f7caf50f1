package api

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/divvykit/divvy/internal/export"
)

func (s *server) exportBillsJSON(c *fiber.Ctx) error {
	rows, err := s.billRows(c)
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

func (s *server) exportBillsCSV(c *fiber.Ctx) error {
	rows, err := s.billRows(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := export.WriteBillsCSV(&buf, rows); err != nil {
		return err
	}
	return sendCSV(c, c.Params("id")+"-bills.csv", buf.Bytes())
}

func (s *server) exportSettlementJSON(c *fiber.Ctx) error {
	plan, err := s.ledger.Settlement(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(export.TransferRows(plan))
}

func (s *server) exportSettlementCSV(c *fiber.Ctx) error {
	plan, err := s.ledger.Settlement(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := export.WriteTransfersCSV(&buf, export.TransferRows(plan)); err != nil {
		return err
	}
	return sendCSV(c, c.Params("id")+"-settlement.csv", buf.Bytes())
}

func (s *server) billRows(c *fiber.Ctx) ([]export.BillRow, error) {
	projectID := c.Params("id")
	bills, err := s.bills.List(c.Context(), projectID)
	if err != nil {
		return nil, err
	}
	members, err := s.members.List(c.Context(), projectID)
	if err != nil {
		return nil, err
	}
	return export.BillRows(bills, members), nil
}

func sendCSV(c *fiber.Ctx, filename string, body []byte) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(body)
}
