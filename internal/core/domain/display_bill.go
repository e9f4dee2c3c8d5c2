package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DisplayBill is the read-only projection of a Bill used by the list view.
// Only Date and Status differ from the source record; the raw values are kept
// alongside so the rendering layer can sort on the calendar value.
type DisplayBill struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	Name         string          `json:"name"`
	Date         string          `json:"date"`   // Human formatted, or raw text when unparseable
	Amount       decimal.Decimal `json:"amount"`
	Pct          int             `json:"pct"`
	Vat          decimal.Decimal `json:"vat"`
	Commentary   string          `json:"commentary"`
	FileURL      string          `json:"fileUrl"`
	FileName     string          `json:"fileName"`
	Status       string          `json:"status"` // Human readable label
	Email        string          `json:"email"`
	CommentAdmin string          `json:"commentAdmin"`

	RawDate   string     `json:"rawDate"`
	RawStatus BillStatus `json:"rawStatus"`
	SortDate  time.Time  `json:"-"`
	DateValid bool       `json:"-"`
}
