package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/SscSPs/billed/internal/apperrors"
	"github.com/SscSPs/billed/internal/core/domain"
	"github.com/SscSPs/billed/internal/core/ports/repositories"
)

// InstrumentedStore records call counts and latency around a bill store.
type InstrumentedStore struct {
	next    repositories.BillStoreFacade
	metrics *Metrics
}

// InstrumentStore wraps next. A nil Metrics returns next unchanged.
func InstrumentStore(next repositories.BillStoreFacade, m *Metrics) repositories.BillStoreFacade {
	if m == nil || next == nil {
		return next
	}
	return &InstrumentedStore{next: next, metrics: m}
}

func (s *InstrumentedStore) ListBills(ctx context.Context) ([]domain.Bill, error) {
	start := time.Now()
	bills, err := s.next.ListBills(ctx)
	s.metrics.observeStore("list_bills", time.Since(start).Seconds(), err)
	return bills, err
}

func (s *InstrumentedStore) CreateBill(ctx context.Context, draft domain.BillDraft) (*domain.Bill, error) {
	start := time.Now()
	bill, err := s.next.CreateBill(ctx, draft)
	s.metrics.observeStore("create_bill", time.Since(start).Seconds(), err)
	return bill, err
}

func (s *InstrumentedStore) UpdateBill(ctx context.Context, billID string, draft domain.BillDraft) (*domain.Bill, error) {
	start := time.Now()
	bill, err := s.next.UpdateBill(ctx, billID, draft)
	s.metrics.observeStore("update_bill", time.Since(start).Seconds(), err)
	return bill, err
}

func (s *InstrumentedStore) UploadFile(ctx context.Context, file domain.SelectedFile, ownerEmail string) (*domain.UploadedFile, error) {
	start := time.Now()
	uploaded, err := s.next.UploadFile(ctx, file, ownerEmail)
	s.metrics.observeStore("upload_file", time.Since(start).Seconds(), err)
	return uploaded, err
}

// ReadFile forwards to the wrapped store when it keeps file contents.
func (s *InstrumentedStore) ReadFile(ctx context.Context, fileID string) (*domain.StoredFile, error) {
	reader, ok := s.next.(repositories.FileReader)
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	start := time.Now()
	file, err := reader.ReadFile(ctx, fileID)
	if errors.Is(err, apperrors.ErrNotFound) {
		s.metrics.observeStore("read_file", time.Since(start).Seconds(), nil)
		return nil, err
	}
	s.metrics.observeStore("read_file", time.Since(start).Seconds(), err)
	return file, err
}
