package handlers

import (
	"bytes"
	"context"
	"database/sql/driver"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/phototree/backend/internal/database"
	"github.com/phototree/backend/internal/middleware"
	"github.com/phototree/backend/internal/models"
	"github.com/phototree/backend/internal/services"
	"github.com/phototree/backend/pkg/logger"
	"github.com/phototree/backend/pkg/resettoken"
	"github.com/phototree/backend/pkg/utils"
	"gorm.io/gorm"
)

type testEnv struct {
	app    *fiber.App
	db     *gorm.DB
	notify *services.NotifyService
}

var testSetupOnce sync.Once

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		gosqlite.MustRegisterScalarFunction("NOW", 0, func(ctx *gosqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			return time.Now().UTC(), nil
		})
		logger.SetOutput(io.Discard)
		utils.ConfigureJWT("test-secret", 24)
		resettoken.SetSecret("test-secret")
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	accessService := services.NewAccessService(db)
	cascadeService := services.NewCascadeService(db, nil)
	notifyService := services.NewNotifyService(db, 10)
	batchService := services.NewBatchService(db, cascadeService, notifyService)
	imageService := services.NewImageService(discardUploader{})

	authHandler := NewAuthHandler(db, services.LogMailer{})
	galleriesHandler := NewGalleriesHandler(db, accessService, cascadeService, 30*time.Second)
	photosHandler := NewPhotosHandler(db, nil, imageService, accessService, cascadeService, batchService, notifyService)
	notificationsHandler := NewNotificationsHandler(notifyService)
	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{BodyLimit: 100 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/me", authMiddleware.RequireAuth, authHandler.Me)
	authRoutes.Post("/reset/request", authHandler.ResetRequest)
	authRoutes.Post("/reset/confirm", authHandler.ResetConfirm)

	api.Post("/public/galleries/:id", authMiddleware.OptionalAuth, galleriesHandler.PublicShow)

	galleryRoutes := api.Group("/galleries", authMiddleware.RequireAuth)
	galleryRoutes.Post("/", galleriesHandler.Create)
	galleryRoutes.Get("/", galleriesHandler.List)
	galleryRoutes.Get("/:id", galleriesHandler.Get)
	galleryRoutes.Get("/:id/children", galleriesHandler.Children)
	galleryRoutes.Get("/:id/photos", galleriesHandler.Photos)
	galleryRoutes.Put("/:id", galleriesHandler.Update)
	galleryRoutes.Delete("/:id", galleriesHandler.Delete)
	galleryRoutes.Post("/:id/assignments", galleriesHandler.Assign)
	galleryRoutes.Delete("/:id/assignments/:userId", galleriesHandler.Unassign)

	photoRoutes := api.Group("/photos", authMiddleware.RequireAuth)
	photoRoutes.Post("/upload", photosHandler.Upload)
	photoRoutes.Post("/batch/rating", photosHandler.BatchRating)
	photoRoutes.Delete("/batch", photosHandler.BatchDelete)
	photoRoutes.Get("/:id", photosHandler.Get)
	photoRoutes.Get("/:id/download", photosHandler.Download)
	photoRoutes.Put("/:id/rating", photosHandler.SetRating)
	photoRoutes.Post("/:id/like", photosHandler.ToggleLike)
	photoRoutes.Get("/:id/comments", photosHandler.ListComments)
	photoRoutes.Post("/:id/comments", photosHandler.AddComment)
	photoRoutes.Delete("/:id", photosHandler.Delete)

	notificationRoutes := api.Group("/notifications", authMiddleware.RequireAuth)
	notificationRoutes.Get("/", notificationsHandler.List)
	notificationRoutes.Get("/unread-count", notificationsHandler.UnreadCount)
	notificationRoutes.Put("/read-all", notificationsHandler.MarkAllRead)
	notificationRoutes.Put("/:id/read", notificationsHandler.MarkRead)

	return &testEnv{app: app, db: db, notify: notifyService}
}

type discardUploader struct{}

func (discardUploader) Upload(_ context.Context, _ string, _ io.Reader, _ int64, _ string) error {
	return nil
}

func createTestUser(t *testing.T, db *gorm.DB, email, password string, role models.UserRole) (*models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	user := &models.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}

	return user, token
}

func createTestGallery(t *testing.T, db *gorm.DB, name string, ownerID uuid.UUID, parentID *uuid.UUID, password string) *models.Gallery {
	t.Helper()

	gallery := &models.Gallery{
		Name:     name,
		OwnerID:  ownerID,
		ParentID: parentID,
	}
	if password != "" {
		hash, err := utils.HashPassword(password)
		if err != nil {
			t.Fatalf("failed hashing gallery password: %v", err)
		}
		gallery.PasswordHash = &hash
	}
	if err := db.Create(gallery).Error; err != nil {
		t.Fatalf("failed creating test gallery: %v", err)
	}
	return gallery
}

func createTestPhoto(t *testing.T, db *gorm.DB, galleryID uuid.UUID, filename string, rating int) *models.Photo {
	t.Helper()

	photo := &models.Photo{
		GalleryID:   galleryID,
		Filename:    filename,
		Rating:      rating,
		MimeType:    "image/jpeg",
		Size:        1024,
		StoragePath: galleryID.String() + "/original/" + filename,
	}
	if err := db.Create(photo).Error; err != nil {
		t.Fatalf("failed creating test photo: %v", err)
	}
	return photo
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if success, _ := body["success"].(bool); success {
		t.Fatalf("expected success=false, got %+v", body)
	}
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}
