package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/auth"
	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/config"
	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/media"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/payment"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/learning-service/internal/validator"
	"github.com/SAP-F-2025/learning-service/pkg"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testFrontendURL = "http://localhost:5173"

// ===== FAKES =====

type mockMediaStore struct {
	mock.Mock
}

func (m *mockMediaStore) Upload(ctx context.Context, kind media.Kind, file media.File) (*media.Object, error) {
	args := m.Called(ctx, kind, file)
	obj, _ := args.Get(0).(*media.Object)
	return obj, args.Error(1)
}

func (m *mockMediaStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	args := m.Called(ctx, req)
	session, _ := args.Get(0).(*payment.CheckoutSession)
	return session, args.Error(1)
}

func (m *mockGateway) ParseWebhook(payload []byte, signature string) (*payment.Event, error) {
	args := m.Called(payload, signature)
	event, _ := args.Get(0).(*payment.Event)
	return event, args.Error(1)
}

// memoryCache stores JSON like the Redis cache does. Setting failing makes
// every call return an error.
type memoryCache struct {
	mu      sync.Mutex
	items   map[string][]byte
	failing bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}}
}

var errCacheDown = errors.New("cache unavailable")

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errCacheDown
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.items[key] = data
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errCacheDown
	}
	data, ok := c.items[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errCacheDown
	}
	delete(c.items, key)
	return nil
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

// ===== ENVIRONMENT =====

type testEnv struct {
	db        *gorm.DB
	repo      repositories.Repository
	media     *mockMediaStore
	gateway   *mockGateway
	cache     *memoryCache
	publisher *events.MockEventPublisher
	tokens    *auth.TokenManager
	services  ServiceManager
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the in-memory database alive and shared.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, pkg.MigrateDatabase(db))
	return db
}

func newTestEnv(t *testing.T, mode string) *testEnv {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := newTestDB(t)

	env := &testEnv{
		db:        db,
		repo:      postgres.NewRepository(db),
		media:     &mockMediaStore{},
		gateway:   &mockGateway{},
		cache:     newMemoryCache(),
		publisher: events.NewMockEventPublisher(log),
		tokens:    auth.NewTokenManager("test-secret", time.Hour),
	}

	env.services = NewServiceManager(Dependencies{
		Repo:      env.repo,
		Media:     env.media,
		Gateway:   env.gateway,
		Cache:     env.cache,
		Publisher: env.publisher,
		Tokens:    env.tokens,
		Validator: validator.New(),
		Logger:    log,
		Purchase: PurchaseSettings{
			Mode:        mode,
			Currency:    "inr",
			FrontendURL: testFrontendURL,
		},
		CatalogCacheTTL: time.Minute,
	})
	return env
}

func newDirectEnv(t *testing.T) *testEnv {
	return newTestEnv(t, config.PaymentModeDirect)
}

// ===== FIXTURES =====

func (e *testEnv) createUser(t *testing.T, name string, role models.UserRole) Actor {
	t.Helper()
	user := &models.User{
		Name:     name,
		Email:    strings.ToLower(name) + "@example.com",
		Password: "unused",
		Role:     role,
	}
	require.NoError(t, e.repo.User().Create(context.Background(), nil, user))
	return Actor{UserID: user.ID, Role: role}
}

// createCourse stores a course with the given number of lectures, in order.
func (e *testEnv) createCourse(t *testing.T, owner Actor, price float64, lectures int) (*models.Course, []*models.Lecture) {
	t.Helper()
	ctx := context.Background()

	course, err := e.services.Course().Create(ctx, owner, &CreateCourseRequest{CourseTitle: "Go in Practice", Category: "Programming"})
	require.NoError(t, err)
	require.NoError(t, e.repo.Course().Update(ctx, nil, course.ID, map[string]interface{}{"price": price}))

	var created []*models.Lecture
	for i := 0; i < lectures; i++ {
		lecture, err := e.services.Lecture().Create(ctx, owner, course.ID, &CreateLectureRequest{LectureTitle: "Lecture " + string(rune('A'+i))})
		require.NoError(t, err)
		created = append(created, lecture)
	}

	course, err = e.services.Course().GetByID(ctx, course.ID)
	require.NoError(t, err)
	return course, created
}

func (e *testEnv) countPurchases(t *testing.T, userID, courseID string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&models.Purchase{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error)
	return count
}

func testFile(name string) media.File {
	return media.File{Name: name, ContentType: "image/png", Size: 4, Body: strings.NewReader("data")}
}
