package services_test

import (
	"context"
	"sync"

	"github.com/SscSPs/billed/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// --- Mock BillStore ---
type MockBillStore struct {
	mock.Mock
}

func (m *MockBillStore) ListBills(ctx context.Context) ([]domain.Bill, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Bill), args.Error(1)
}

func (m *MockBillStore) CreateBill(ctx context.Context, draft domain.BillDraft) (*domain.Bill, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bill), args.Error(1)
}

func (m *MockBillStore) UpdateBill(ctx context.Context, billID string, draft domain.BillDraft) (*domain.Bill, error) {
	args := m.Called(ctx, billID, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bill), args.Error(1)
}

func (m *MockBillStore) UploadFile(ctx context.Context, file domain.SelectedFile, ownerEmail string) (*domain.UploadedFile, error) {
	args := m.Called(ctx, file, ownerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadedFile), args.Error(1)
}

// navigationRecorder captures the paths a pipeline navigates to.
type navigationRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *navigationRecorder) Navigate(_ context.Context, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *navigationRecorder) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}
