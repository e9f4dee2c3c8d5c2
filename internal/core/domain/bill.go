package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BillStatus is the review state of a bill.
type BillStatus string

const (
	StatusPending  BillStatus = "pending"
	StatusAccepted BillStatus = "accepted"
	StatusRefused  BillStatus = "refused"
)

// DefaultPct is applied when the employee leaves the percentage field empty.
const DefaultPct = 20

// Valid reports whether s is one of the three known review states.
func (s BillStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRefused:
		return true
	}
	return false
}

// Bill is an expense report submitted by an employee.
type Bill struct {
	ID           string          `json:"id"`           // Assigned by the store
	Type         string          `json:"type"`         // Expense category, free-form
	Name         string          `json:"name"`         // Short label
	Date         string          `json:"date"`         // Calendar date as stored
	Amount       decimal.Decimal `json:"amount"`       // Non-negative
	Pct          int             `json:"pct"`          // Non-negative percentage
	Vat          decimal.Decimal `json:"vat"`          // Non-negative
	Commentary   string          `json:"commentary"`   // Optional
	FileURL      string          `json:"fileUrl"`      // Optional until the upload completes
	FileName     string          `json:"fileName"`     // Optional
	Status       BillStatus      `json:"status"`       // pending | accepted | refused
	Email        string          `json:"email"`        // Submitter identity
	CommentAdmin string          `json:"commentAdmin"` // Optional reviewer note
}

// Validate checks the invariants a stored bill must hold.
func (b Bill) Validate() error {
	if !b.Status.Valid() {
		return fmt.Errorf("bill %s: unknown status %q", b.ID, b.Status)
	}
	if strings.TrimSpace(b.Email) == "" {
		return fmt.Errorf("bill %s: submitter email is required", b.ID)
	}
	if b.Amount.IsNegative() {
		return fmt.Errorf("bill %s: amount must be non-negative", b.ID)
	}
	if b.Vat.IsNegative() {
		return fmt.Errorf("bill %s: vat must be non-negative", b.ID)
	}
	if b.Pct < 0 {
		return fmt.Errorf("bill %s: pct must be non-negative", b.ID)
	}
	return nil
}

// BillDraft is the employee-side bill accumulated from the creation form.
// ID carries the key issued by the file upload, if any, so the store can bind
// the new record to its proof.
type BillDraft struct {
	ID         string          `json:"id,omitempty"`
	Type       string          `json:"type"`
	Name       string          `json:"name"`
	Date       string          `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	Pct        int             `json:"pct"`
	Vat        decimal.Decimal `json:"vat"`
	Commentary string          `json:"commentary"`
	FileURL    string          `json:"fileUrl"`
	FileName   string          `json:"fileName"`
	Status     BillStatus      `json:"status"`
	Email      string          `json:"email"`
}

// ToBill materialises the draft as a stored record with the given identifier.
func (d BillDraft) ToBill(id string) Bill {
	status := d.Status
	if status == "" {
		status = StatusPending
	}
	return Bill{
		ID:         id,
		Type:       d.Type,
		Name:       d.Name,
		Date:       d.Date,
		Amount:     d.Amount,
		Pct:        d.Pct,
		Vat:        d.Vat,
		Commentary: d.Commentary,
		FileURL:    d.FileURL,
		FileName:   d.FileName,
		Status:     status,
		Email:      d.Email,
	}
}

// billDateLayouts lists the textual date formats seen in stored bills, most
// common first.
var billDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"02-01-2006",
	"02/01/2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseBillDate parses a stored bill date into a calendar value.
func ParseBillDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty bill date")
	}
	for _, layout := range billDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised bill date %q", raw)
}
