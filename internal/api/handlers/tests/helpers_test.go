package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"invoicehub/internal/api/handlers"
	"invoicehub/internal/api/middleware"
	"invoicehub/internal/api/routes"
	"invoicehub/internal/auth"
	"invoicehub/internal/models"
	"invoicehub/internal/services"
	"invoicehub/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret"

// --- Service mocks ---

type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) CreateInvoice(ctx context.Context, req *dto.CreateInvoiceRequest) (*models.Invoice, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) GetInvoiceByID(ctx context.Context, req *dto.GetInvoiceByIDRequest) (*models.Invoice, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) ListInvoices(ctx context.Context, req *dto.ListInvoicesRequest) ([]models.Invoice, int, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Invoice), args.Int(1), args.Error(2)
}

func (m *MockInvoiceService) UpdateInvoice(ctx context.Context, req *dto.UpdateInvoiceRequest) (*models.Invoice, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) DeleteInvoice(ctx context.Context, req *dto.DeleteInvoiceRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockInvoiceService) MarkAsPaid(ctx context.Context, req *dto.MarkInvoicePaidRequest) (*models.Invoice, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) SendReminder(ctx context.Context, req *dto.SendReminderRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockInvoiceService) RenderPDF(ctx context.Context, req *dto.GetInvoiceByIDRequest) (*models.Invoice, []byte, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Invoice), args.Get(1).([]byte), args.Error(2)
}

var _ services.InvoiceService = (*MockInvoiceService)(nil)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LoginResponse), args.Error(1)
}

func (m *MockUserService) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockUserService) GetByID(ctx context.Context, req *dto.GetUserByIdRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Onboard(ctx context.Context, req *dto.OnboardRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

var _ services.UserService = (*MockUserService)(nil)

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Summary(ctx context.Context, req *dto.DashboardSummaryRequest) (*dto.DashboardSummaryResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.DashboardSummaryResponse), args.Error(1)
}

func (m *MockDashboardService) PaidRevenue(ctx context.Context, req *dto.RevenueRequest) (*dto.RevenueResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RevenueResponse), args.Error(1)
}

var _ services.DashboardService = (*MockDashboardService)(nil)

// --- Router setup ---

type testEnv struct {
	router      *gin.Engine
	tokens      *auth.TokenManager
	revocations *auth.MemoryRevocationStore
	invoices    *MockInvoiceService
	users       *MockUserService
	dashboard   *MockDashboardService
	userID      uuid.UUID
	token       string
	claims      auth.Claims
}

// setupTestRouter registers every resource route with the real auth middleware.
// Reminders allow a burst of reminderBurst.
func setupTestRouter(t *testing.T, reminderBurst int) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		router:      gin.New(),
		tokens:      auth.NewTokenManager(testSecret, time.Hour, "invoicehub-test"),
		revocations: auth.NewMemoryRevocationStore(),
		invoices:    new(MockInvoiceService),
		users:       new(MockUserService),
		dashboard:   new(MockDashboardService),
		userID:      uuid.New(),
	}

	token, claims, err := env.tokens.Issue(env.userID)
	require.NoError(t, err)
	env.token, env.claims = token, claims

	authMiddleware := middleware.JWTAuthMiddleware(env.tokens, env.revocations)
	limiter := middleware.NewUserRateLimiter(1, reminderBurst)

	apiV1 := env.router.Group("/api/v1")
	routes.RegisterUserRoutes(apiV1, handlers.NewUserHandler(env.users), authMiddleware)
	routes.RegisterInvoiceRoutes(apiV1, handlers.NewInvoiceHandler(env.invoices), authMiddleware, limiter.Middleware())
	routes.RegisterDashboardRoutes(apiV1, handlers.NewDashboardHandler(env.dashboard), authMiddleware)

	t.Cleanup(func() {
		env.invoices.AssertExpectations(t)
		env.users.AssertExpectations(t)
		env.dashboard.AssertExpectations(t)
	})
	return env
}

// do sends an authenticated request unless token is empty.
func (e *testEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func sampleInvoice(owner uuid.UUID) *models.Invoice {
	return &models.Invoice{
		ID:              uuid.New(),
		UserID:          owner,
		InvoiceName:     "Website redesign",
		InvoiceNumber:   7,
		Currency:        models.CurrencyUSD,
		Status:          models.InvoiceStatusPending,
		Date:            time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		DueDate:         15,
		FromName:        "Ada Lovelace",
		FromEmail:       "ada@example.com",
		FromAddress:     "London",
		ClientName:      "Acme Ltd",
		ClientEmail:     "billing@acme.test",
		ClientAddress:   "1 Road",
		ItemDescription: "Design work",
		ItemQuantity:    decimal.NewFromInt(3),
		ItemRate:        decimal.NewFromInt(100),
		Total:           decimal.NewFromInt(300),
	}
}
