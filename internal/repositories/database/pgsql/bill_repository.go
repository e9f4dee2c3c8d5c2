package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/billed/internal/apperrors"
	"github.com/SscSPs/billed/internal/core/domain"
	portsrepo "github.com/SscSPs/billed/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const billColumns = `id, type, name, date, amount::text, pct, vat::text, commentary, file_url, file_name, status, email, comment_admin`

// PgxBillRepository stores bills and their proofs in Postgres.
type PgxBillRepository struct {
	BaseRepository
	publicBaseURL string
}

var (
	_ portsrepo.BillStoreFacade    = (*PgxBillRepository)(nil)
	_ portsrepo.FileReader         = (*PgxBillRepository)(nil)
	_ portsrepo.TransactionManager = (*PgxBillRepository)(nil)
)

// NewPgxBillRepository creates a repository. Uploaded proofs are served under
// {publicBaseURL}/files/{id}.
func NewPgxBillRepository(pool *pgxpool.Pool, publicBaseURL string) *PgxBillRepository {
	return &PgxBillRepository{BaseRepository: BaseRepository{Pool: pool}, publicBaseURL: publicBaseURL}
}

// Close releases the pool.
func (r *PgxBillRepository) Close() error {
	r.Pool.Close()
	return nil
}

// ListBills returns every bill in insertion order.
func (r *PgxBillRepository) ListBills(ctx context.Context) ([]domain.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills ORDER BY created_at, id;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	defer rows.Close()

	bills, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Bill, error) {
		return scanBill(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan bills: %w", err)
	}
	if bills == nil {
		bills = []domain.Bill{}
	}
	return bills, nil
}

// CreateBill inserts the draft as a pending bill. When the draft carries an
// upload key, the bill takes that id and the stored proof is bound to it.
func (r *PgxBillRepository) CreateBill(ctx context.Context, draft domain.BillDraft) (*domain.Bill, error) {
	id := draft.ID
	if id == "" {
		id = uuid.NewString()
	}
	bill := draft.ToBill(id)
	bill.Status = domain.StatusPending
	if err := bill.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	query := `
		INSERT INTO bills (id, type, name, date, amount, pct, vat, commentary, file_url, file_name, status, email)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7::numeric, $8, $9, $10, $11, $12);
	`
	_, err = tx.Exec(ctx, query,
		bill.ID, bill.Type, bill.Name, bill.Date, bill.Amount.String(), bill.Pct, bill.Vat.String(),
		bill.Commentary, bill.FileURL, bill.FileName, string(bill.Status), bill.Email,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("bill %s: %w", bill.ID, apperrors.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to insert bill %s: %w", bill.ID, err)
	}

	if draft.ID != "" {
		tag, err := tx.Exec(ctx, `UPDATE bill_files SET bill_id = $1 WHERE id = $1;`, bill.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to bind proof to bill %s: %w", bill.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return nil, fmt.Errorf("proof %s: %w", bill.ID, apperrors.ErrNotFound)
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &bill, nil
}

// UpdateBill replaces the editable fields of a bill. An empty status keeps the stored one.
func (r *PgxBillRepository) UpdateBill(ctx context.Context, billID string, draft domain.BillDraft) (*domain.Bill, error) {
	if draft.Status != "" && !draft.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, draft.Status)
	}
	query := `
		UPDATE bills SET
			type = $2, name = $3, date = $4, amount = $5::numeric, pct = $6, vat = $7::numeric,
			commentary = $8, file_url = $9, file_name = $10,
			status = COALESCE(NULLIF($11, ''), status)
		WHERE id = $1
		RETURNING ` + billColumns + `;
	`
	row := r.Pool.QueryRow(ctx, query,
		billID, draft.Type, draft.Name, draft.Date, draft.Amount.String(), draft.Pct, draft.Vat.String(),
		draft.Commentary, draft.FileURL, draft.FileName, string(draft.Status),
	)
	bill, err := scanBill(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update bill %s: %w", billID, err)
	}
	return &bill, nil
}

// UploadFile stores the proof bytes and returns their public URL.
func (r *PgxBillRepository) UploadFile(ctx context.Context, file domain.SelectedFile, ownerEmail string) (*domain.UploadedFile, error) {
	id := uuid.NewString()
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	query := `
		INSERT INTO bill_files (id, file_name, content_type, content, owner_email)
		VALUES ($1, $2, $3, $4, $5);
	`
	if _, err := r.Pool.Exec(ctx, query, id, file.Name, contentType, file.Content, ownerEmail); err != nil {
		return nil, fmt.Errorf("failed to store file %s: %w", file.Name, err)
	}
	return &domain.UploadedFile{FileURL: r.publicBaseURL + "/files/" + id, FileName: file.Name, ID: id}, nil
}

// ReadFile returns a stored proof.
func (r *PgxBillRepository) ReadFile(ctx context.Context, fileID string) (*domain.StoredFile, error) {
	query := `SELECT id, file_name, content_type, content FROM bill_files WHERE id = $1;`
	var f domain.StoredFile
	err := r.Pool.QueryRow(ctx, query, fileID).Scan(&f.ID, &f.FileName, &f.ContentType, &f.Content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read file %s: %w", fileID, err)
	}
	return &f, nil
}

func scanBill(row pgx.Row) (domain.Bill, error) {
	var (
		b           domain.Bill
		amount, vat string
		status      string
	)
	err := row.Scan(&b.ID, &b.Type, &b.Name, &b.Date, &amount, &b.Pct, &vat,
		&b.Commentary, &b.FileURL, &b.FileName, &status, &b.Email, &b.CommentAdmin)
	if err != nil {
		return b, err
	}
	b.Status = domain.BillStatus(status)
	if b.Amount, err = decimal.NewFromString(amount); err != nil {
		return b, fmt.Errorf("bill %s: invalid amount %q: %w", b.ID, amount, err)
	}
	if b.Vat, err = decimal.NewFromString(vat); err != nil {
		return b, fmt.Errorf("bill %s: invalid vat %q: %w", b.ID, vat, err)
	}
	return b, nil
}
