package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/SscSPs/billed/internal/apperrors"
	"github.com/SscSPs/billed/internal/core/domain"
	"github.com/SscSPs/billed/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/billed/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// allowedProofExtensions are the only proof formats the store accepts.
var allowedProofExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
}

// NewBillService is the creation form pipeline. It is not safe for concurrent
// use; the owning session serializes calls.
type NewBillService struct {
	BaseService
	store     repositories.BillStoreFacade
	navigate  portssvc.Navigator
	submitter string
	state     portssvc.NewBillState
}

var _ portssvc.NewBillSvcFacade = (*NewBillService)(nil)

// NewNewBillService creates a creation form pipeline navigating through navigate.
func NewNewBillService(navigate portssvc.Navigator, opts ...Option) *NewBillService {
	cfg := newPipelineConfig(opts)
	if navigate == nil {
		navigate = noopNavigator
	}
	svc := &NewBillService{
		store:    cfg.store,
		navigate: navigate,
		state:    portssvc.NewBillState{FileState: portssvc.FileIdle},
	}
	if cfg.user != nil {
		svc.submitter = cfg.user.Email
	}
	return svc
}

// State returns a copy of the current form state.
func (s *NewBillService) State() portssvc.NewBillState {
	st := s.state
	if st.Attachment != nil {
		a := *st.Attachment
		st.Attachment = &a
	}
	return st
}

// HandleChangeFile accepts jpg, jpeg and png proofs and uploads them. Other
// extensions are rejected without error; the rejection shows in State.
func (s *NewBillService) HandleChangeFile(ctx context.Context, file domain.SelectedFile) error {
	s.state.FileState = portssvc.FileValidating
	s.state.Attachment = nil
	s.state.UploadError = ""

	ext := file.Extension()
	if !allowedProofExtensions[ext] {
		s.state.FileState = portssvc.FileRejected
		s.state.ExtensionError = true
		s.LogInfo(ctx, "Proof rejected", slog.String("file_name", file.Name), slog.String("extension", ext))
		s.state.FileState = portssvc.FileIdle
		return nil
	}
	s.state.ExtensionError = false

	if s.submitter == "" {
		err := fmt.Errorf("%w: no employee to own the proof", apperrors.ErrUnauthorized)
		s.LogError(ctx, err, "Refusing proof upload", slog.String("file_name", file.Name))
		s.state.UploadError = err.Error()
		return fmt.Errorf("failed to upload proof in service: %w", err)
	}

	s.state.FileState = portssvc.FileUploading
	uploaded, err := s.store.UploadFile(ctx, file, s.submitter)
	s.state.FileState = portssvc.FileIdle
	if err != nil {
		s.LogError(ctx, err, "Failed to upload proof", slog.String("file_name", file.Name))
		s.state.UploadError = err.Error()
		return fmt.Errorf("failed to upload proof in service: %w", err)
	}

	s.state.Attachment = uploaded
	s.LogDebug(ctx, "Proof uploaded", slog.String("file_id", uploaded.ID), slog.String("file_url", uploaded.FileURL))
	return nil
}

// HandleSubmit creates a pending bill from the form and the staged proof, then
// returns to the list view. On failure nothing is navigated.
func (s *NewBillService) HandleSubmit(ctx context.Context, form portssvc.NewBillForm) error {
	if s.submitter == "" {
		err := fmt.Errorf("%w: no employee to submit the bill", apperrors.ErrUnauthorized)
		s.LogError(ctx, err, "Refusing bill creation")
		return fmt.Errorf("failed to create bill in service: %w", err)
	}
	draft := s.buildDraft(form)

	bill, err := s.store.CreateBill(ctx, draft)
	if err != nil {
		s.LogError(ctx, err, "Failed to create bill", slog.String("email", draft.Email))
		return fmt.Errorf("failed to create bill in service: %w", err)
	}
	if bill != nil {
		s.LogInfo(ctx, "Bill created", slog.String("bill_id", bill.ID))
	}

	s.state = portssvc.NewBillState{FileState: portssvc.FileIdle}
	s.navigate(ctx, domain.RouteBills)
	return nil
}

func (s *NewBillService) buildDraft(form portssvc.NewBillForm) domain.BillDraft {
	draft := domain.BillDraft{
		Type:       form.Type,
		Name:       form.Name,
		Date:       form.Date,
		Amount:     parseDecimal(form.Amount),
		Vat:        parseDecimal(form.Vat),
		Pct:        domain.DefaultPct,
		Commentary: form.Commentary,
		Status:     domain.StatusPending,
		Email:      s.submitter,
	}
	if pct, err := strconv.Atoi(strings.TrimSpace(form.Pct)); err == nil {
		draft.Pct = pct
	}
	if a := s.state.Attachment; a != nil {
		draft.ID = a.ID
		draft.FileURL = a.FileURL
		draft.FileName = a.FileName
	}
	return draft
}

// parseDecimal reads a form number. Fields are validated upstream, so bad input reads as zero.
func parseDecimal(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.Replace(strings.TrimSpace(raw), ",", ".", 1))
	if err != nil {
		return decimal.Zero
	}
	return d
}
