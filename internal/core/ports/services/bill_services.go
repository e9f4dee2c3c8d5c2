package services

import (
	"context"

	"github.com/SscSPs/billed/internal/core/domain"
)

// Navigator requests a navigation to a logical path. It is the only way a
// pipeline can change the current view.
type Navigator func(ctx context.Context, path string)

// BillsReaderSvc supplies the list view with normalised bills.
type BillsReaderSvc interface {
	// GetBills returns one display bill per stored bill, in store order.
	GetBills(ctx context.Context) ([]domain.DisplayBill, error)
}

// BillsGestureSvc reacts to the gestures available on the list view.
type BillsGestureSvc interface {
	// HandleClickIconEye opens the preview of a bill's proof.
	HandleClickIconEye(ctx context.Context, fileURL string) (*domain.FilePreview, error)

	// HandleClickNewBill navigates to the creation form.
	HandleClickNewBill(ctx context.Context)
}

// BillsSvcFacade combines the list view pipeline interfaces.
type BillsSvcFacade interface {
	BillsReaderSvc
	BillsGestureSvc
}

// FileState is the state of the proof attachment on the creation form.
type FileState string

const (
	FileIdle       FileState = "idle"
	FileValidating FileState = "validating"
	FileUploading  FileState = "uploading"
	FileRejected   FileState = "rejected"
)

// NewBillState is a snapshot of the creation form for rendering.
type NewBillState struct {
	FileState      FileState
	ExtensionError bool
	UploadError    string
	Attachment     *domain.UploadedFile
}

// NewBillForm holds the values read from the creation form.
type NewBillForm struct {
	Type       string
	Name       string
	Date       string
	Amount     string
	Vat        string
	Pct        string
	Commentary string
}

// NewBillSvcFacade is the creation form pipeline.
type NewBillSvcFacade interface {
	// HandleChangeFile validates and uploads the selected proof.
	HandleChangeFile(ctx context.Context, file domain.SelectedFile) error

	// HandleSubmit builds the bill from the form and the staged proof and
	// persists it, then returns to the list view.
	HandleSubmit(ctx context.Context, form NewBillForm) error

	// State returns the current form state.
	State() NewBillState
}
