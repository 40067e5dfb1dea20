package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/phototree/backend/internal/config"
	"github.com/phototree/backend/internal/database"
	"github.com/phototree/backend/internal/handlers"
	"github.com/phototree/backend/internal/middleware"
	"github.com/phototree/backend/internal/services"
	"github.com/phototree/backend/internal/storage"
	"github.com/phototree/backend/pkg/logger"
	"github.com/phototree/backend/pkg/resettoken"
	"github.com/phototree/backend/pkg/utils"
)

func main() {
	logger.Init()

	cfg := config.Load()
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)
	resettoken.SetSecret(cfg.JWT.Secret)
	resettoken.StartCleanup(5 * time.Minute)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	storageClient, err := storage.NewMinIOClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("minio initialization failed: %v", err)
	}
	if err := storageClient.EnsureBucket(context.Background()); err != nil {
		log.Fatalf("failed ensuring minio bucket: %v", err)
	}

	accessService := services.NewAccessService(db)
	cascadeService := services.NewCascadeService(db, storageClient)
	notifyService := services.NewNotifyService(db, cfg.Notify.QueueBufferSize)
	batchService := services.NewBatchService(db, cascadeService, notifyService)
	imageService := services.NewImageService(storageClient)

	authHandler := handlers.NewAuthHandler(db, services.LogMailer{})
	galleriesHandler := handlers.NewGalleriesHandler(db, accessService, cascadeService, cfg.Listing.Timeout)
	photosHandler := handlers.NewPhotosHandler(db, storageClient, imageService, accessService, cascadeService, batchService, notifyService)
	notificationsHandler := handlers.NewNotificationsHandler(notifyService)

	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{BodyLimit: 100 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

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

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":    cfg.Server.Port,
		"address": listenAddr,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			notifyService.Close()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
