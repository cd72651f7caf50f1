package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/divvykit/divvy/internal/calculator"
)

func (s *server) getBalances(c *fiber.Ctx) error {
	rows, err := s.ledger.Balances(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}

	out := make([]balanceResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toBalanceResponse(row))
	}
	return c.JSON(out)
}

func (s *server) getStatistics(c *fiber.Ctx) error {
	stats, err := s.ledger.Stats(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}

	rows := make([]balanceResponse, 0, len(stats.Rows))
	for _, row := range stats.Rows {
		rows = append(rows, toBalanceResponse(row))
	}

	monthly := make(map[string]float64)
	for year, months := range stats.Monthly {
		for month, total := range months {
			key := calculator.YearMonth{Year: year, Month: month}.String()
			monthly[key] = money(total)
		}
	}

	activeMonths := make([]string, 0, len(stats.ActiveMonths))
	for _, ym := range stats.ActiveMonths {
		activeMonths = append(activeMonths, ym.String())
	}

	return c.JSON(statisticsResponse{
		Stats:        rows,
		Monthly:      monthly,
		ActiveMonths: activeMonths,
	})
}

func (s *server) getSettlement(c *fiber.Ctx) error {
	plan, err := s.ledger.Settlement(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(toTransferResponses(plan))
}
