// Package api implements the bill store over the billing backend's REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SscSPs/billed/internal/apperrors"
	"github.com/SscSPs/billed/internal/core/domain"
	portsrepo "github.com/SscSPs/billed/internal/core/ports/repositories"
	"golang.org/x/oauth2"
)

// maxErrorBody bounds how much of a rejection body is kept for logs.
const maxErrorBody = 4 << 10

// BillStore talks to GET/POST /bills, PATCH /bills/{id} and POST /bills/files.
type BillStore struct {
	baseURL string
	client  *http.Client
}

var _ portsrepo.BillStoreFacade = (*BillStore)(nil)

// NewBillStore creates a store rooted at baseURL. A non-empty token is sent as
// a bearer token on every request.
func NewBillStore(baseURL, token string, timeout time.Duration) *BillStore {
	client := &http.Client{}
	if token != "" {
		client = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
	}
	client.Timeout = timeout
	return &BillStore{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// ListBills fetches every bill.
func (s *BillStore) ListBills(ctx context.Context) ([]domain.Bill, error) {
	var bills []domain.Bill
	if err := s.doJSON(ctx, http.MethodGet, "/bills", nil, &bills); err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	if bills == nil {
		bills = []domain.Bill{}
	}
	return bills, nil
}

// CreateBill posts a draft and returns the stored bill.
func (s *BillStore) CreateBill(ctx context.Context, draft domain.BillDraft) (*domain.Bill, error) {
	if draft.Status == "" {
		draft.Status = domain.StatusPending
	}
	var bill domain.Bill
	if err := s.doJSON(ctx, http.MethodPost, "/bills", draft, &bill); err != nil {
		return nil, fmt.Errorf("failed to create bill: %w", err)
	}
	return &bill, nil
}

// UpdateBill patches an existing bill.
func (s *BillStore) UpdateBill(ctx context.Context, billID string, draft domain.BillDraft) (*domain.Bill, error) {
	var bill domain.Bill
	if err := s.doJSON(ctx, http.MethodPatch, "/bills/"+url.PathEscape(billID), draft, &bill); err != nil {
		return nil, fmt.Errorf("failed to update bill %s: %w", billID, err)
	}
	return &bill, nil
}

// UploadFile sends the proof as multipart form data with fields file and email.
func (s *BillStore) UploadFile(ctx context.Context, file domain.SelectedFile, ownerEmail string) (*domain.UploadedFile, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := mw.WriteField("email", ownerEmail); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/bills/files", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var uploaded domain.UploadedFile
	if err := s.do(req, &uploaded); err != nil {
		return nil, fmt.Errorf("failed to upload file %s: %w", file.Name, err)
	}
	if uploaded.FileName == "" {
		uploaded.FileName = file.Name
	}
	return &uploaded, nil
}

func (s *BillStore) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.do(req, out)
}

func (s *BillStore) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	res, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return apperrors.NewStoreError(res.StatusCode, string(detail))
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
