package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/divvykit/divvy/internal/models"
	"github.com/divvykit/divvy/internal/service"
)

// Request bodies parse money as decimal so nothing is lost before
// validation. Responses render money as JSON numbers rounded to two
// decimals.

type createProjectRequest struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ContactEmail    string `json:"contact_email"`
	DefaultCurrency string `json:"default_currency"`
	PrivateCode     string `json:"private_code"`
}

type updateProjectRequest struct {
	Name            string `json:"name"`
	ContactEmail    string `json:"contact_email"`
	DefaultCurrency string `json:"default_currency"`
	PrivateCode     string `json:"private_code"`
}

type addMemberRequest struct {
	Name   string          `json:"name"`
	Weight decimal.Decimal `json:"weight"`
}

type updateMemberRequest struct {
	Name      string           `json:"name"`
	Weight    *decimal.Decimal `json:"weight"`
	Activated *bool            `json:"activated"`
}

type billRequest struct {
	What             string          `json:"what"`
	PayerID          int64           `json:"payer_id"`
	Amount           decimal.Decimal `json:"amount"`
	Date             string          `json:"date"`
	OriginalCurrency string          `json:"original_currency"`
	OwerIDs          []int64         `json:"ower_ids"`
}

type memberResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Weight    float64 `json:"weight"`
	Activated bool    `json:"activated"`
}

type projectResponse struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	ContactEmail    string             `json:"contact_email"`
	DefaultCurrency string             `json:"default_currency"`
	CreatedAt       string             `json:"created_at"`
	Members         []memberResponse   `json:"members"`
	Balance         map[string]float64 `json:"balance"`
}

type billResponse struct {
	ID               int64   `json:"id"`
	What             string  `json:"what"`
	PayerID          int64   `json:"payer_id"`
	Amount           float64 `json:"amount"`
	Date             string  `json:"date"`
	OriginalCurrency string  `json:"original_currency"`
	OwerIDs          []int64 `json:"ower_ids"`
	CreatedAt        string  `json:"created_at"`
}

type balanceResponse struct {
	Member  memberResponse `json:"member"`
	Paid    float64        `json:"paid"`
	Spent   float64        `json:"spent"`
	Balance float64        `json:"balance"`
}

type statisticsResponse struct {
	Stats        []balanceResponse  `json:"stats"`
	Monthly      map[string]float64 `json:"monthly"`
	ActiveMonths []string           `json:"active_months"`
}

type memberRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type transferResponse struct {
	From   memberRef `json:"from"`
	To     memberRef `json:"to"`
	Amount float64   `json:"amount"`
}

type removeMemberResponse struct {
	Deleted bool            `json:"deleted"`
	Member  *memberResponse `json:"member,omitempty"`
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func toMemberResponse(m models.Member) memberResponse {
	return memberResponse{
		ID:        m.ID,
		Name:      m.Name,
		Weight:    m.Weight.InexactFloat64(),
		Activated: m.Activated,
	}
}

func toBillResponse(b *models.Bill) billResponse {
	return billResponse{
		ID:               b.ID,
		What:             b.What,
		PayerID:          b.PayerID,
		Amount:           b.Amount.InexactFloat64(),
		Date:             b.Date.Format(models.DateFormat),
		OriginalCurrency: b.OriginalCurrency,
		OwerIDs:          b.OwerIDs,
		CreatedAt:        b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toBalanceResponse(row service.BalanceRow) balanceResponse {
	return balanceResponse{
		Member:  toMemberResponse(row.Member),
		Paid:    money(row.Paid),
		Spent:   money(row.Spent),
		Balance: money(row.Balance),
	}
}

func toTransferResponses(plan []service.Transfer) []transferResponse {
	out := make([]transferResponse, 0, len(plan))
	for _, t := range plan {
		out = append(out, transferResponse{
			From:   memberRef{ID: t.From.ID, Name: t.From.Name},
			To:     memberRef{ID: t.To.ID, Name: t.To.Name},
			Amount: money(t.Amount),
		})
	}
	return out
}
