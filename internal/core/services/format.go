package services

import (
	"fmt"

	"github.com/SscSPs/billed/internal/core/domain"
)

// frenchMonths holds the capitalised three-letter French month abbreviations.
var frenchMonths = [12]string{"Jan", "Fév", "Mar", "Avr", "Mai", "Jui", "Jui", "Aoû", "Sep", "Oct", "Nov", "Déc"}

// FormatDate renders a stored date as "<day> <Mon>. <yy>", e.g. "2004-04-04"
// becomes "4 Avr. 04". It returns an error when the text does not parse.
func FormatDate(raw string) (string, error) {
	t, err := domain.ParseBillDate(raw)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %s. %02d", t.Day(), frenchMonths[t.Month()-1], t.Year()%100), nil
}

// FormatStatus returns the label shown to the employee. Unknown values are returned as is.
func FormatStatus(status domain.BillStatus) string {
	switch status {
	case domain.StatusPending:
		return "En attente"
	case domain.StatusAccepted:
		return "Accepté"
	case domain.StatusRefused:
		return "Refusé"
	default:
		return string(status)
	}
}

// ToDisplayBill projects a stored bill for the list view. Only Date and Status
// change; an unparseable date keeps its raw text.
func ToDisplayBill(b domain.Bill) domain.DisplayBill {
	d := domain.DisplayBill{
		ID:           b.ID,
		Type:         b.Type,
		Name:         b.Name,
		Date:         b.Date,
		Amount:       b.Amount,
		Pct:          b.Pct,
		Vat:          b.Vat,
		Commentary:   b.Commentary,
		FileURL:      b.FileURL,
		FileName:     b.FileName,
		Status:       FormatStatus(b.Status),
		Email:        b.Email,
		CommentAdmin: b.CommentAdmin,
		RawDate:      b.Date,
		RawStatus:    b.Status,
	}
	if t, err := domain.ParseBillDate(b.Date); err == nil {
		d.SortDate = t
		d.DateValid = true
		d.Date, _ = FormatDate(b.Date)
	}
	return d
}
