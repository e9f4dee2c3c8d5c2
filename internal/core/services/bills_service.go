package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/SscSPs/billed/internal/apperrors"
	"github.com/SscSPs/billed/internal/core/domain"
	"github.com/SscSPs/billed/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/billed/internal/core/ports/services"
)

// BillsService is the list view pipeline.
type BillsService struct {
	BaseService
	store    repositories.BillReader
	navigate portssvc.Navigator
}

var _ portssvc.BillsSvcFacade = (*BillsService)(nil)

// NewBillsService creates a list view pipeline navigating through navigate.
func NewBillsService(navigate portssvc.Navigator, opts ...Option) *BillsService {
	cfg := newPipelineConfig(opts)
	if navigate == nil {
		navigate = noopNavigator
	}
	return &BillsService{store: cfg.store, navigate: navigate}
}

// GetBills lists the stored bills and formats them for display, keeping store order.
func (s *BillsService) GetBills(ctx context.Context) ([]domain.DisplayBill, error) {
	bills, err := s.store.ListBills(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list bills")
		return nil, fmt.Errorf("failed to list bills in service: %w", err)
	}

	display := make([]domain.DisplayBill, 0, len(bills))
	for _, b := range bills {
		d := ToDisplayBill(b)
		if !d.DateValid {
			s.LogDebug(ctx, "Bill date could not be formatted", slog.String("bill_id", b.ID), slog.String("date", b.Date))
		}
		display = append(display, d)
	}
	return display, nil
}

// HandleClickIconEye returns the preview of the proof at fileURL.
func (s *BillsService) HandleClickIconEye(ctx context.Context, fileURL string) (*domain.FilePreview, error) {
	fileURL = strings.TrimSpace(fileURL)
	if fileURL == "" {
		return nil, fmt.Errorf("%w: bill has no proof to preview", apperrors.ErrValidation)
	}
	s.LogDebug(ctx, "Opening proof preview", slog.String("file_url", fileURL))
	return &domain.FilePreview{URL: fileURL, Kind: previewKind(fileURL)}, nil
}

// HandleClickNewBill navigates to the creation form.
func (s *BillsService) HandleClickNewBill(ctx context.Context) {
	s.navigate(ctx, domain.RouteNewBill)
}

func previewKind(fileURL string) domain.PreviewKind {
	p := fileURL
	if u, err := url.Parse(fileURL); err == nil {
		p = u.Path
	}
	switch strings.ToLower(strings.TrimPrefix(path.Ext(p), ".")) {
	case "png", "jpg", "jpeg", "gif", "webp":
		return domain.PreviewImage
	case "pdf":
		return domain.PreviewPDF
	default:
		return domain.PreviewLink
	}
}
