package repositories

import (
	"context"

	"github.com/SscSPs/billed/internal/core/domain"
)

// BillReader defines read operations on the remote bill resource.
type BillReader interface {
	// ListBills returns every bill visible to the caller, in store order.
	ListBills(ctx context.Context) ([]domain.Bill, error)
}

// BillWriter defines write operations on the remote bill resource.
type BillWriter interface {
	// CreateBill persists a new bill. The store assigns the identifier (or
	// reuses the upload key carried by the draft) and sets status to pending.
	CreateBill(ctx context.Context, draft domain.BillDraft) (*domain.Bill, error)

	// UpdateBill replaces the employee-editable fields of an existing bill.
	UpdateBill(ctx context.Context, billID string, draft domain.BillDraft) (*domain.Bill, error)
}

// FileUploader stores a proof file on behalf of its owner.
type FileUploader interface {
	UploadFile(ctx context.Context, file domain.SelectedFile, ownerEmail string) (*domain.UploadedFile, error)
}

// FileReader is implemented by stores that keep proof contents themselves and
// can hand them back for display.
type FileReader interface {
	ReadFile(ctx context.Context, fileID string) (*domain.StoredFile, error)
}

// BillStoreFacade combines the operations the pipelines consume.
type BillStoreFacade interface {
	BillReader
	BillWriter
	FileUploader
}

// ClosableBillStore is a BillStoreFacade holding resources to release on shutdown.
type ClosableBillStore interface {
	BillStoreFacade
	Close() error
}
