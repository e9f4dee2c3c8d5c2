package services_test

import (
	"testing"

	"github.com/SscSPs/billed/internal/core/domain"
	"github.com/SscSPs/billed/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDate(t *testing.T) {
	cases := map[string]string{
		"2004-04-04": "4 Avr. 04",
		"2001-01-01": "1 Jan. 01",
		"2022-08-15": "15 Aoû. 22",
		"30-03-2022": "30 Mar. 22",
		"2003-12-31": "31 Déc. 03",
	}
	for raw, want := range cases {
		got, err := services.FormatDate(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := services.FormatDate("not a date")
	assert.Error(t, err)
}

func TestFormatStatus(t *testing.T) {
	assert.Equal(t, "En attente", services.FormatStatus(domain.StatusPending))
	assert.Equal(t, "Accepté", services.FormatStatus(domain.StatusAccepted))
	assert.Equal(t, "Refusé", services.FormatStatus(domain.StatusRefused))
	assert.Equal(t, "archived", services.FormatStatus("archived"))
}

func TestToDisplayBill(t *testing.T) {
	bill := domain.Bill{
		ID:     "47qAXb6fIm2zOKkLzMro",
		Type:   "Hôtel et logement",
		Name:   "encore",
		Date:   "2004-04-04",
		Amount: decimal.NewFromInt(400),
		Pct:    20,
		Vat:    decimal.NewFromInt(80),
		Status: domain.StatusPending,
		Email:  "a@a",
	}

	d := services.ToDisplayBill(bill)

	assert.Equal(t, bill.ID, d.ID)
	assert.Equal(t, "4 Avr. 04", d.Date)
	assert.Equal(t, "En attente", d.Status)
	assert.Equal(t, "2004-04-04", d.RawDate)
	assert.Equal(t, domain.StatusPending, d.RawStatus)
	assert.True(t, d.DateValid)
	assert.True(t, bill.Amount.Equal(d.Amount))
	assert.Equal(t, 2004, d.SortDate.Year())
}

func TestToDisplayBill_CorruptedDateKeepsRawText(t *testing.T) {
	d := services.ToDisplayBill(domain.Bill{ID: "x", Date: "corrupted", Status: domain.StatusRefused})

	assert.Equal(t, "corrupted", d.Date)
	assert.False(t, d.DateValid)
	assert.Equal(t, "Refusé", d.Status)
}
