package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/billed/internal/app"
	"github.com/SscSPs/billed/internal/apperrors"
	"github.com/SscSPs/billed/internal/core/domain"
	"github.com/SscSPs/billed/internal/core/ports/repositories"
	"github.com/SscSPs/billed/internal/dto"
	"github.com/SscSPs/billed/internal/handlers"
	"github.com/SscSPs/billed/internal/platform/config"
	"github.com/SscSPs/billed/internal/platform/metrics"
	"github.com/SscSPs/billed/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
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
func (m *MockBillStore) ReadFile(ctx context.Context, fileID string) (*domain.StoredFile, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StoredFile), args.Error(1)
}

// Ensure mock implements the interfaces
var (
	_ repositories.BillStoreFacade = (*MockBillStore)(nil)
	_ repositories.FileReader      = (*MockBillStore)(nil)
)

const testEmail = "employee@test.tld"

type HandlersTestSuite struct {
	suite.Suite
	router    *gin.Engine
	store     *MockBillStore
	sessions  *app.Registry
	cfg       *config.Config
	sessionID string
}

func (suite *HandlersTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(handlers.RegisterValidators())
}

func (suite *HandlersTestSuite) SetupTest() {
	suite.store = new(MockBillStore)
	suite.cfg = &config.Config{
		SessionSecret:     "test-secret",
		SessionTTL:        time.Hour,
		SessionCookieName: "billed_session",
		SessionIssuer:     "billed-test",
		IsProduction:      true,
	}

	sessions, err := app.NewRegistry(16, suite.store, nil)
	suite.Require().NoError(err)
	suite.sessions = sessions
	suite.sessionID = "session-1"

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, suite.cfg, handlers.Dependencies{
		Sessions: sessions,
		Files:    suite.store,
		Metrics:  metrics.New(),
	})
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (suite *HandlersTestSuite) cookie() *http.Cookie {
	token, err := utils.GenerateSessionToken(
		domain.User{Type: domain.UserTypeEmployee, Email: testEmail},
		suite.sessionID, suite.cfg.SessionSecret, suite.cfg.SessionTTL, suite.cfg.SessionIssuer,
	)
	suite.Require().NoError(err)
	return &http.Cookie{Name: suite.cfg.SessionCookieName, Value: token}
}

func (suite *HandlersTestSuite) do(req *http.Request, withSession bool) *httptest.ResponseRecorder {
	if withSession {
		req.AddCookie(suite.cookie())
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func postFile(path, name string, content []byte) *http.Request {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, _ := mw.CreateFormFile("file", name)
	_, _ = part.Write(content)
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func fixtureBills() []domain.Bill {
	return []domain.Bill{
		{ID: "1", Type: "Transports", Name: "old", Date: "2001-01-01", Amount: decimal.NewFromInt(100), Pct: 20, Status: domain.StatusRefused, FileURL: "https://files.local/old.jpg", Email: testEmail},
		{ID: "2", Type: "Hôtel et logement", Name: "new", Date: "2004-04-04", Amount: decimal.NewFromInt(400), Pct: 20, Status: domain.StatusPending, FileURL: "https://files.local/new.pdf", Email: testEmail},
	}
}

func (suite *HandlersTestSuite) TestHealth() {
	w := suite.do(httptest.NewRequest(http.MethodGet, "/health", nil), false)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

func (suite *HandlersTestSuite) TestLoginPage_Anonymous() {
	w := suite.do(httptest.NewRequest(http.MethodGet, "/", nil), false)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `data-testid="employee-email-input"`)
	suite.NotContains(w.Body.String(), `data-testid="layout-disconnect"`)
	suite.store.AssertNotCalled(suite.T(), "ListBills", mock.Anything)
}

func (suite *HandlersTestSuite) TestLogin_SetsCookieAndRedirects() {
	w := suite.do(postForm("/login", url.Values{"email": {testEmail}}), false)

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal(domain.RouteBills, w.Header().Get("Location"))
	cookies := w.Result().Cookies()
	suite.Require().Len(cookies, 1)
	suite.Equal(suite.cfg.SessionCookieName, cookies[0].Name)

	sessionID, user, err := utils.ParseSessionToken(cookies[0].Value, suite.cfg.SessionSecret)
	suite.Require().NoError(err)
	suite.NotEmpty(sessionID)
	suite.Equal(domain.User{Type: domain.UserTypeEmployee, Email: testEmail}, user)
}

func (suite *HandlersTestSuite) TestLogin_InvalidEmail() {
	w := suite.do(postForm("/login", url.Values{"email": {"not-an-email"}}), false)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), `data-testid="employee-email-input"`)
	suite.Empty(w.Result().Cookies())
}

func (suite *HandlersTestSuite) TestLogout_DropsSession() {
	suite.store.On("ListBills", mock.Anything).Return(fixtureBills(), nil)
	suite.do(httptest.NewRequest(http.MethodGet, domain.RouteBills, nil), true)
	suite.Equal(1, suite.sessions.Len())

	w := suite.do(httptest.NewRequest(http.MethodPost, "/logout", nil), true)

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal(domain.RouteLogin, w.Header().Get("Location"))
	suite.Equal(0, suite.sessions.Len())
	cookies := w.Result().Cookies()
	suite.Require().Len(cookies, 1)
	suite.Empty(cookies[0].Value)
}

func (suite *HandlersTestSuite) TestBills_RequiresSession() {
	w := suite.do(httptest.NewRequest(http.MethodGet, domain.RouteBills, nil), false)

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal(domain.RouteLogin, w.Header().Get("Location"))
}

func (suite *HandlersTestSuite) TestBills_ListsMostRecentFirst() {
	suite.store.On("ListBills", mock.Anything).Return(fixtureBills(), nil).Once()

	w := suite.do(httptest.NewRequest(http.MethodGet, domain.RouteBills, nil), true)

	suite.Equal(http.StatusOK, w.Code)
	body := w.Body.String()
	suite.Contains(body, "Mes notes de frais")
	suite.Contains(body, `data-testid="layout-disconnect"`)
	newer := strings.Index(body, "4 Avr. 04")
	older := strings.Index(body, "1 Jan. 01")
	suite.Require().NotEqual(-1, newer)
	suite.Require().NotEqual(-1, older)
	suite.Less(newer, older)
	suite.Contains(body, "En attente")
	suite.Contains(body, "Refusé")
	suite.store.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) TestBills_StoreErrorShowsMessage() {
	suite.store.On("ListBills", mock.Anything).Return(nil, apperrors.NewStoreError(http.StatusNotFound, "")).Once()

	w := suite.do(httptest.NewRequest(http.MethodGet, domain.RouteBills, nil), true)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.Contains(w.Body.String(), `data-testid="error-message"`)
	suite.Contains(w.Body.String(), "Erreur 404")
}

func (suite *HandlersTestSuite) TestPreview_OpensModal() {
	suite.store.On("ListBills", mock.Anything).Return(fixtureBills(), nil)

	w := suite.do(postForm("/employee/bills/preview", url.Values{"billUrl": {"https://files.local/old.jpg"}}), true)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `class="modal show"`)
	suite.Contains(w.Body.String(), `src="https://files.local/old.jpg"`)

	// the preview is shown once
	w = suite.do(httptest.NewRequest(http.MethodGet, domain.RouteBills, nil), true)
	suite.NotContains(w.Body.String(), `class="modal show"`)
}

func (suite *HandlersTestSuite) TestPreview_WithoutFile() {
	suite.store.On("ListBills", mock.Anything).Return(fixtureBills(), nil)

	w := suite.do(postForm("/employee/bills/preview", url.Values{"billUrl": {""}}), true)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "Mes notes de frais")
	suite.NotContains(w.Body.String(), `class="modal show"`)
}

func (suite *HandlersTestSuite) TestCreateBillRequested_ShowsForm() {
	w := suite.do(httptest.NewRequest(http.MethodPost, "/employee/bills/new", nil), true)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Envoyer une note de frais")
	suite.Contains(w.Body.String(), `data-testid="form-new-bill"`)
	suite.store.AssertNotCalled(suite.T(), "ListBills", mock.Anything)
}

func (suite *HandlersTestSuite) TestUpload_RejectsExtension() {
	w := suite.do(postFile("/employee/bill/new/file", "proof.pdf", []byte("%PDF-1.4")), true)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `data-testid="file-extension-error"`)
	suite.store.AssertNotCalled(suite.T(), "UploadFile", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlersTestSuite) TestUpload_StoresProof() {
	suite.store.On("UploadFile", mock.Anything, mock.MatchedBy(func(f domain.SelectedFile) bool {
		return f.Name == "proof.jpg" && string(f.Content) == "jpeg-bytes"
	}), testEmail).Return(&domain.UploadedFile{FileURL: "https://files.local/proof.jpg", FileName: "proof.jpg", ID: "1234"}, nil).Once()

	w := suite.do(postFile("/employee/bill/new/file", "proof.jpg", []byte("jpeg-bytes")), true)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `data-testid="attached-file"`)
	suite.NotContains(w.Body.String(), `data-testid="file-extension-error"`)
	suite.store.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) TestUpload_StoreFailure() {
	suite.store.On("UploadFile", mock.Anything, mock.Anything, testEmail).Return(nil, apperrors.NewStoreError(http.StatusInternalServerError, "boom")).Once()

	w := suite.do(postFile("/employee/bill/new/file", "proof.png", []byte("png-bytes")), true)

	suite.Equal(http.StatusBadGateway, w.Code)
	suite.Contains(w.Body.String(), `data-testid="upload-error"`)
	suite.Contains(w.Body.String(), "Erreur 500")
}

func (suite *HandlersTestSuite) TestUpload_MissingFile() {
	w := suite.do(postForm("/employee/bill/new/file", url.Values{}), true)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), `data-testid="upload-error"`)
}

func (suite *HandlersTestSuite) TestSubmit_CreatesPendingBill() {
	suite.store.On("UploadFile", mock.Anything, mock.Anything, testEmail).Return(&domain.UploadedFile{FileURL: "https://files.local/proof.jpg", FileName: "proof.jpg", ID: "1234"}, nil).Once()
	suite.store.On("CreateBill", mock.Anything, mock.MatchedBy(func(d domain.BillDraft) bool {
		return d.ID == "1234" &&
			d.Status == domain.StatusPending &&
			d.Email == testEmail &&
			d.Pct == domain.DefaultPct &&
			d.Amount.Equal(decimal.NewFromInt(348)) &&
			d.Vat.Equal(decimal.NewFromInt(70)) &&
			d.FileName == "proof.jpg"
	})).Return(&domain.Bill{ID: "1234", Status: domain.StatusPending}, nil).Once()
	suite.store.On("ListBills", mock.Anything).Return(fixtureBills(), nil).Once()

	suite.do(postFile("/employee/bill/new/file", "proof.jpg", []byte("jpeg-bytes")), true)
	w := suite.do(postForm("/employee/bill/new", url.Values{
		"type":   {"Transports"},
		"name":   {"Vol Paris Londres"},
		"date":   {"2004-04-04"},
		"amount": {"348"},
		"vat":    {"70"},
		"pct":    {""},
	}), true)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Mes notes de frais")
	suite.store.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) TestSubmit_InvalidForm() {
	w := suite.do(postForm("/employee/bill/new", url.Values{
		"type":   {"Transports"},
		"date":   {"yesterday"},
		"amount": {"-3"},
	}), true)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), `data-testid="form-new-bill"`)
	suite.Contains(w.Body.String(), `data-testid="upload-error"`)
	suite.store.AssertNotCalled(suite.T(), "CreateBill", mock.Anything, mock.Anything)
}

func (suite *HandlersTestSuite) TestSubmit_StoreFailureRendersError() {
	suite.store.On("CreateBill", mock.Anything, mock.Anything).Return(nil, apperrors.NewStoreError(http.StatusInternalServerError, "")).Once()

	w := suite.do(postForm("/employee/bill/new", url.Values{
		"type":   {"Transports"},
		"date":   {"2004-04-04"},
		"amount": {"12,50"},
	}), true)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.Contains(w.Body.String(), `data-testid="error-message"`)
	suite.Contains(w.Body.String(), "Erreur 500")
}

func (suite *HandlersTestSuite) TestUnknownRoute() {
	w := suite.do(httptest.NewRequest(http.MethodGet, "/employee/nowhere", nil), true)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Contains(w.Body.String(), `data-testid="not-found"`)
}

func (suite *HandlersTestSuite) TestFiles_ServesProof() {
	suite.store.On("ReadFile", mock.Anything, "42").Return(&domain.StoredFile{ID: "42", FileName: "proof.png", ContentType: "image/png", Content: []byte("png")}, nil).Once()

	w := suite.do(httptest.NewRequest(http.MethodGet, "/files/42", nil), false)

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("image/png", w.Header().Get("Content-Type"))
	suite.Equal("png", w.Body.String())
}

func (suite *HandlersTestSuite) TestFiles_NotFound() {
	suite.store.On("ReadFile", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound).Once()

	w := suite.do(httptest.NewRequest(http.MethodGet, "/files/missing", nil), false)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestAPIListBills() {
	suite.store.On("ListBills", mock.Anything).Return(fixtureBills(), nil).Once()

	w := suite.do(httptest.NewRequest(http.MethodGet, "/api/v1/bills", nil), true)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListBillsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Bills, 2)
	suite.Equal("2", resp.Bills[0].ID)
	suite.Equal("4 Avr. 04", resp.Bills[0].Date)
	suite.Equal("2004-04-04", resp.Bills[0].RawDate)
	suite.Equal("En attente", resp.Bills[0].Status)
	suite.Equal("pending", resp.Bills[0].RawStatus)
}

func (suite *HandlersTestSuite) TestAPIListBills_Unauthorized() {
	w := suite.do(httptest.NewRequest(http.MethodGet, "/api/v1/bills", nil), false)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestAPIListBills_StoreError() {
	suite.store.On("ListBills", mock.Anything).Return(nil, apperrors.NewStoreError(http.StatusInternalServerError, "")).Once()

	w := suite.do(httptest.NewRequest(http.MethodGet, "/api/v1/bills", nil), true)

	suite.Equal(http.StatusBadGateway, w.Code)
	var resp dto.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Contains(resp.Error, "Erreur 500")
}

func (suite *HandlersTestSuite) TestMetricsExposed() {
	w := suite.do(httptest.NewRequest(http.MethodGet, "/metrics", nil), false)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "go_goroutines")
}
