package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appsession "github.com/rental/backoffice/internal/application/session"
	"github.com/rental/backoffice/internal/domain/catalog"
	"github.com/rental/backoffice/internal/domain/quotation"
	domain "github.com/rental/backoffice/internal/domain/session"
	"github.com/rental/backoffice/internal/domain/shared"
	"github.com/rental/backoffice/internal/infrastructure/auth"
	"github.com/rental/backoffice/internal/interfaces/http/dto"
	"github.com/rental/backoffice/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// ============================================================================
// Backend mocks
// ============================================================================

// MockQuotationRepository is a mock implementation of quotation.Repository
type MockQuotationRepository struct {
	mock.Mock
}

func (m *MockQuotationRepository) List(ctx context.Context, filter quotation.Filter) (*shared.Page[quotation.Quotation], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Page[quotation.Quotation]), args.Error(1)
}

func (m *MockQuotationRepository) Get(ctx context.Context, id int64) (*quotation.Quotation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quotation.Quotation), args.Error(1)
}

func (m *MockQuotationRepository) Create(ctx context.Context, sub quotation.Submission) (*quotation.Quotation, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quotation.Quotation), args.Error(1)
}

func (m *MockQuotationRepository) Update(ctx context.Context, id int64, sub quotation.Submission) (*quotation.Quotation, error) {
	args := m.Called(ctx, id, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quotation.Quotation), args.Error(1)
}

func (m *MockQuotationRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockQuotationRepository) UpdateStatus(ctx context.Context, id int64, status quotation.Status) (*quotation.Quotation, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quotation.Quotation), args.Error(1)
}

func (m *MockQuotationRepository) Export(ctx context.Context, id int64, format quotation.ExportFormat) (*quotation.Document, error) {
	args := m.Called(ctx, id, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quotation.Document), args.Error(1)
}

// MockCatalogRepository implements the equipment, category and bundle repositories
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) ListEquipment(ctx context.Context, filter catalog.EquipmentFilter) (*shared.Page[catalog.Equipment], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Page[catalog.Equipment]), args.Error(1)
}

func (m *MockCatalogRepository) GetEquipment(ctx context.Context, id int64) (*catalog.Equipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Equipment), args.Error(1)
}

func (m *MockCatalogRepository) CreateEquipment(ctx context.Context, in catalog.EquipmentInput) (*catalog.Equipment, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Equipment), args.Error(1)
}

func (m *MockCatalogRepository) UpdateEquipment(ctx context.Context, id int64, in catalog.EquipmentInput) (*catalog.Equipment, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Equipment), args.Error(1)
}

func (m *MockCatalogRepository) DeleteEquipment(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogRepository) ListCategories(ctx context.Context, filter catalog.ListFilter) (*shared.Page[catalog.Category], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Page[catalog.Category]), args.Error(1)
}

func (m *MockCatalogRepository) GetCategory(ctx context.Context, id int64) (*catalog.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCatalogRepository) CreateCategory(ctx context.Context, in catalog.CategoryInput) (*catalog.Category, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCatalogRepository) UpdateCategory(ctx context.Context, id int64, in catalog.CategoryInput) (*catalog.Category, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCatalogRepository) DeleteCategory(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogRepository) ListBundles(ctx context.Context, filter catalog.ListFilter) (*shared.Page[catalog.Bundle], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Page[catalog.Bundle]), args.Error(1)
}

func (m *MockCatalogRepository) GetBundle(ctx context.Context, id int64) (*catalog.Bundle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Bundle), args.Error(1)
}

func (m *MockCatalogRepository) CreateBundle(ctx context.Context, in catalog.BundleInput) (*catalog.Bundle, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Bundle), args.Error(1)
}

func (m *MockCatalogRepository) UpdateBundle(ctx context.Context, id int64, in catalog.BundleInput) (*catalog.Bundle, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Bundle), args.Error(1)
}

func (m *MockCatalogRepository) DeleteBundle(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockAuthenticator is a mock implementation of appsession.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, username, password string) (*appsession.LoginResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appsession.LoginResult), args.Error(1)
}

func (m *MockAuthenticator) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockAuthenticator) Me(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// ============================================================================
// Session fixtures
// ============================================================================

// stubTokens issues the session id itself as the cookie value
type stubTokens struct{}

func (stubTokens) Issue(id uuid.UUID) (string, time.Time, error) {
	return id.String(), time.Now().Add(time.Hour), nil
}

func (stubTokens) Parse(token string) (uuid.UUID, error) {
	return uuid.Parse(token)
}

type sessionEnv struct {
	auth    *MockAuthenticator
	store   *auth.InMemoryCredentialStore
	manager *appsession.Manager
	config  middleware.SessionConfig
	gate    appsession.Gate
}

func newSessionEnv() *sessionEnv {
	env := &sessionEnv{
		auth:  new(MockAuthenticator),
		store: auth.NewInMemoryCredentialStore(time.Hour),
		gate:  appsession.NewGate("/login", "/"),
	}
	env.manager = appsession.NewManager(env.auth, env.store, zap.NewNop())
	env.config = middleware.SessionConfig{
		Tokens:     stubTokens{},
		Manager:    env.manager,
		CookieName: "rental_session",
		Logger:     zap.NewNop(),
	}
	return env
}

// loggedIn returns the id of a session that already holds credentials
func (env *sessionEnv) loggedIn(t *testing.T) uuid.UUID {
	t.Helper()
	id := uuid.New()
	user := &domain.User{ID: 7, Username: "admin"}
	require.NoError(t, env.store.Save(context.Background(), id, &domain.Credentials{Token: "tok-" + id.String(), User: user}))
	env.auth.On("Me", mock.Anything, "tok-"+id.String()).Return(user, nil).Maybe()
	return id
}

// engine returns a router with the session middleware installed
func (env *sessionEnv) engine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Session(env.config))
	return r
}

// ============================================================================
// Request helpers
// ============================================================================

func doRequest(r http.Handler, method, path string, body any, session uuid.UUID) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != uuid.Nil {
		req.AddCookie(&http.Cookie{Name: "rental_session", Value: session.String()})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// decodeData re-decodes the envelope's data field into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()
	var raw struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), w.Body.String())
	if out != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	return raw.Response
}
