package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/divvykit/divvy/internal/models"
	"github.com/divvykit/divvy/internal/service"
)

func (s *server) listBills(c *fiber.Ctx) error {
	bills, err := s.bills.List(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}

	out := make([]billResponse, 0, len(bills))
	for i := range bills {
		out = append(out, toBillResponse(&bills[i]))
	}
	return c.JSON(out)
}

func (s *server) addBill(c *fiber.Ctx) error {
	params, err := parseBillRequest(c)
	if err != nil {
		return err
	}

	bill, err := s.bills.Add(c.Context(), c.Params("id"), params)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toBillResponse(bill))
}

func (s *server) getBill(c *fiber.Ctx) error {
	billID, err := pathInt(c, "bid")
	if err != nil {
		return err
	}

	bill, err := s.bills.Get(c.Context(), c.Params("id"), billID)
	if err != nil {
		return err
	}
	return c.JSON(toBillResponse(bill))
}

func (s *server) updateBill(c *fiber.Ctx) error {
	billID, err := pathInt(c, "bid")
	if err != nil {
		return err
	}

	params, err := parseBillRequest(c)
	if err != nil {
		return err
	}

	bill, err := s.bills.Update(c.Context(), c.Params("id"), billID, params)
	if err != nil {
		return err
	}
	return c.JSON(toBillResponse(bill))
}

func (s *server) deleteBill(c *fiber.Ctx) error {
	billID, err := pathInt(c, "bid")
	if err != nil {
		return err
	}

	if err := s.bills.Delete(c.Context(), c.Params("id"), billID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseBillRequest(c *fiber.Ctx) (service.BillParams, error) {
	var req billRequest
	if err := c.BodyParser(&req); err != nil {
		return service.BillParams{}, fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}

	var date time.Time
	if req.Date != "" {
		var err error
		date, err = time.ParseInLocation(models.DateFormat, req.Date, time.UTC)
		if err != nil {
			return service.BillParams{}, fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
	}

	return service.BillParams{
		What:     req.What,
		PayerID:  req.PayerID,
		Amount:   req.Amount,
		Date:     date,
		Currency: req.OriginalCurrency,
		OwerIDs:  req.OwerIDs,
	}, nil
}
