package services

import (
	"context"

	"github.com/SscSPs/billed/internal/apperrors"
	"github.com/SscSPs/billed/internal/core/domain"
	"github.com/SscSPs/billed/internal/core/ports/repositories"
)

type pipelineConfig struct {
	store repositories.BillStoreFacade
	user  *domain.User
}

// Option configures a pipeline.
type Option func(*pipelineConfig)

// WithBillStore sets the store a pipeline talks to. Without it, reads return
// nothing and writes fail with apperrors.ErrStoreUnavailable.
func WithBillStore(store repositories.BillStoreFacade) Option {
	return func(c *pipelineConfig) {
		if store != nil {
			c.store = store
		}
	}
}

// WithUser sets the employee on whose behalf proofs are uploaded and bills
// created. Without it, both writes fail with apperrors.ErrUnauthorized.
func WithUser(user domain.User) Option {
	return func(c *pipelineConfig) {
		c.user = &user
	}
}

func newPipelineConfig(opts []Option) pipelineConfig {
	cfg := pipelineConfig{store: noBillStore{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// noBillStore stands in when no store is configured.
type noBillStore struct{}

func (noBillStore) ListBills(context.Context) ([]domain.Bill, error) {
	return []domain.Bill{}, nil
}

func (noBillStore) CreateBill(context.Context, domain.BillDraft) (*domain.Bill, error) {
	return nil, apperrors.ErrStoreUnavailable
}

func (noBillStore) UpdateBill(context.Context, string, domain.BillDraft) (*domain.Bill, error) {
	return nil, apperrors.ErrStoreUnavailable
}

func (noBillStore) UploadFile(context.Context, domain.SelectedFile, string) (*domain.UploadedFile, error) {
	return nil, apperrors.ErrStoreUnavailable
}

func noopNavigator(context.Context, string) {}
