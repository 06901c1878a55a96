package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/auth"
	"github.com/SAP-F-2025/learning-service/internal/config"
	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/media"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/payment"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/SAP-F-2025/learning-service/internal/validator"
	"github.com/SAP-F-2025/learning-service/pkg"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testWebhookSecret = "whsec_handler_test"

// stubMediaStore hands out predictable URLs without touching a bucket.
type stubMediaStore struct{}

func (stubMediaStore) Upload(_ context.Context, kind media.Kind, file media.File) (*media.Object, error) {
	id := string(kind) + "/" + file.Name
	return &media.Object{ID: id, URL: "https://cdn.test/" + id}, nil
}

func (stubMediaStore) Delete(context.Context, string) error { return nil }

type testServer struct {
	router    *gin.Engine
	db        *gorm.DB
	repo      repositories.Repository
	tokens    *auth.TokenManager
	publisher *events.MockEventPublisher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, pkg.MigrateDatabase(db))

	gateway, err := payment.NewStripeGateway(payment.StripeConfig{
		SecretKey:     "sk_test_handlers",
		WebhookSecret: testWebhookSecret,
	}, log)
	require.NoError(t, err)

	srv := &testServer{
		router:    gin.New(),
		db:        db,
		repo:      postgres.NewRepository(db),
		tokens:    auth.NewTokenManager("handler-secret", time.Hour),
		publisher: events.NewMockEventPublisher(log),
	}

	manager := services.NewServiceManager(services.Dependencies{
		Repo:      srv.repo,
		Media:     stubMediaStore{},
		Gateway:   gateway,
		Publisher: srv.publisher,
		Tokens:    srv.tokens,
		Validator: validator.New(),
		Logger:    log,
		Purchase: services.PurchaseSettings{
			Mode:        config.PaymentModeGateway,
			Currency:    "inr",
			FrontendURL: "http://localhost:5173",
		},
		CatalogCacheTTL: time.Minute,
	})

	NewHandlerManager(manager, srv.tokens, RouterConfig{
		AllowedOrigins: []string{"http://localhost:5173"},
		Cookie:         SessionCookie{TTL: time.Hour},
	}, utils.NewSlogLogger(log)).SetupRoutes(srv.router)

	return srv
}

// createUser stores a user and returns a session cookie for them.
func (s *testServer) createUser(t *testing.T, name string, role models.UserRole) (*models.User, *http.Cookie) {
	t.Helper()
	user := &models.User{
		Name:     name,
		Email:    strings.ToLower(name) + "@example.com",
		Password: "unused",
		Role:     role,
	}
	require.NoError(t, s.repo.User().Create(context.Background(), nil, user))

	token, err := s.tokens.Issue(user.ID, role)
	require.NoError(t, err)
	return user, &http.Cookie{Name: auth.CookieName, Value: token}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// decodeData unmarshals the data field of a success envelope into dest.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}
