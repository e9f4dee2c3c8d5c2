// Package sqlite provides a single-file bill store on the pure Go SQLite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/SscSPs/billed/internal/apperrors"
	"github.com/SscSPs/billed/internal/core/domain"
	portsrepo "github.com/SscSPs/billed/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

var (
	_ portsrepo.ClosableBillStore = (*SQLiteStore)(nil)
	_ portsrepo.FileReader        = (*SQLiteStore)(nil)
)

const billColumns = `id, type, name, date, amount, pct, vat, commentary, file_url, file_name, status, email, comment_admin`

// SQLiteStore implements the bill store using SQLite.
type SQLiteStore struct {
	db            *sql.DB
	publicBaseURL string
}

// New opens the database at dbPath, creating parent directories and the schema.
func New(dbPath, publicBaseURL string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Single writer keeps SQLite away from SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db, publicBaseURL: publicBaseURL}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ListBills returns every bill in insertion order.
func (s *SQLiteStore) ListBills(ctx context.Context) ([]domain.Bill, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+billColumns+" FROM bills ORDER BY created_at, rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	defer rows.Close()

	bills := []domain.Bill{}
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return bills, nil
}

// CreateBill inserts the draft as a pending bill, binding the uploaded proof
// whose key the draft carries.
func (s *SQLiteStore) CreateBill(ctx context.Context, draft domain.BillDraft) (*domain.Bill, error) {
	id := draft.ID
	if id == "" {
		id = uuid.New().String()
	}
	bill := draft.ToBill(id)
	bill.Status = domain.StatusPending
	if err := bill.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO bills (id, type, name, date, amount, pct, vat, commentary, file_url, file_name, status, email, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		bill.ID, bill.Type, bill.Name, bill.Date, bill.Amount.String(), bill.Pct, bill.Vat.String(),
		bill.Commentary, bill.FileURL, bill.FileName, string(bill.Status), bill.Email, time.Now().UnixNano(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("bill %s: %w", bill.ID, apperrors.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to insert bill: %w", err)
	}

	if draft.ID != "" {
		res, err := tx.ExecContext(ctx, "UPDATE bill_files SET bill_id = ? WHERE id = ?", bill.ID, bill.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to bind proof: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to bind proof: %w", err)
		}
		if n == 0 {
			return nil, fmt.Errorf("proof %s: %w", bill.ID, apperrors.ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &bill, nil
}

// UpdateBill replaces the editable fields of a bill. An empty status keeps the stored one.
func (s *SQLiteStore) UpdateBill(ctx context.Context, billID string, draft domain.BillDraft) (*domain.Bill, error) {
	if draft.Status != "" && !draft.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, draft.Status)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE bills SET type = ?, name = ?, date = ?, amount = ?, pct = ?, vat = ?, commentary = ?,
			file_url = ?, file_name = ?, status = COALESCE(NULLIF(?, ''), status)
		WHERE id = ?`,
		draft.Type, draft.Name, draft.Date, draft.Amount.String(), draft.Pct, draft.Vat.String(),
		draft.Commentary, draft.FileURL, draft.FileName, string(draft.Status), billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update bill: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperrors.ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, "SELECT "+billColumns+" FROM bills WHERE id = ?", billID)
	bill, err := scanBill(row)
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

// UploadFile stores the proof bytes and returns their public URL.
func (s *SQLiteStore) UploadFile(ctx context.Context, file domain.SelectedFile, ownerEmail string) (*domain.UploadedFile, error) {
	id := uuid.New().String()
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO bill_files (id, file_name, content_type, content, owner_email, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		id, file.Name, contentType, file.Content, ownerEmail, time.Now().UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}
	return &domain.UploadedFile{FileURL: s.publicBaseURL + "/files/" + id, FileName: file.Name, ID: id}, nil
}

// ReadFile returns a stored proof.
func (s *SQLiteStore) ReadFile(ctx context.Context, fileID string) (*domain.StoredFile, error) {
	var f domain.StoredFile
	err := s.db.QueryRowContext(ctx,
		"SELECT id, file_name, content_type, content FROM bill_files WHERE id = ?", fileID,
	).Scan(&f.ID, &f.FileName, &f.ContentType, &f.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return &f, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (domain.Bill, error) {
	var (
		b           domain.Bill
		amount, vat string
		status      string
	)
	err := row.Scan(&b.ID, &b.Type, &b.Name, &b.Date, &amount, &b.Pct, &vat,
		&b.Commentary, &b.FileURL, &b.FileName, &status, &b.Email, &b.CommentAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return b, apperrors.ErrNotFound
	}
	if err != nil {
		return b, fmt.Errorf("failed to scan bill: %w", err)
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
