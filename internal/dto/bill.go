package dto

import (
	"github.com/SscSPs/billed/internal/core/domain"
	portssvc "github.com/SscSPs/billed/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// NewBillRequest is the creation form as posted by the browser.
type NewBillRequest struct {
	Type       string `form:"type" binding:"required"`
	Name       string `form:"name"`
	Date       string `form:"date" binding:"required,billdate"`
	Amount     string `form:"amount" binding:"required,nonnegative"`
	Vat        string `form:"vat" binding:"omitempty,nonnegative"`
	Pct        string `form:"pct" binding:"omitempty,number"`
	Commentary string `form:"commentary"`
}

// ToForm converts the request to the pipeline's form values.
func (r NewBillRequest) ToForm() portssvc.NewBillForm {
	return portssvc.NewBillForm{
		Type:       r.Type,
		Name:       r.Name,
		Date:       r.Date,
		Amount:     r.Amount,
		Vat:        r.Vat,
		Pct:        r.Pct,
		Commentary: r.Commentary,
	}
}

// PreviewRequest carries the proof URL of the bill whose eye icon was clicked.
type PreviewRequest struct {
	BillURL string `form:"billUrl"`
}

// BillResponse is a bill as listed by the JSON API.
type BillResponse struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	Name         string          `json:"name"`
	Date         string          `json:"date"`
	RawDate      string          `json:"rawDate"`
	Amount       decimal.Decimal `json:"amount" swaggertype:"string"`
	Pct          int             `json:"pct"`
	Vat          decimal.Decimal `json:"vat" swaggertype:"string"`
	Commentary   string          `json:"commentary"`
	FileURL      string          `json:"fileUrl"`
	FileName     string          `json:"fileName"`
	Status       string          `json:"status"`
	RawStatus    string          `json:"rawStatus"`
	Email        string          `json:"email"`
	CommentAdmin string          `json:"commentAdmin"`
}

// ListBillsResponse wraps the listed bills.
type ListBillsResponse struct {
	Bills []BillResponse `json:"bills"`
}

// ToBillResponse converts a domain.DisplayBill to BillResponse DTO
func ToBillResponse(b domain.DisplayBill) BillResponse {
	return BillResponse{
		ID:           b.ID,
		Type:         b.Type,
		Name:         b.Name,
		Date:         b.Date,
		RawDate:      b.RawDate,
		Amount:       b.Amount,
		Pct:          b.Pct,
		Vat:          b.Vat,
		Commentary:   b.Commentary,
		FileURL:      b.FileURL,
		FileName:     b.FileName,
		Status:       b.Status,
		RawStatus:    string(b.RawStatus),
		Email:        b.Email,
		CommentAdmin: b.CommentAdmin,
	}
}

// ToListBillsResponse converts display bills, keeping their order.
func ToListBillsResponse(bills []domain.DisplayBill) ListBillsResponse {
	list := make([]BillResponse, len(bills))
	for i, b := range bills {
		list[i] = ToBillResponse(b)
	}
	return ListBillsResponse{Bills: list}
}
