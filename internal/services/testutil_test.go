package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/phototree/backend/internal/models"
	"github.com/phototree/backend/pkg/utils"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
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

	err = db.AutoMigrate(
		&models.User{},
		&models.Gallery{},
		&models.Photo{},
		&models.PhotoLike{},
		&models.Comment{},
		&models.GalleryAssignment{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	return db
}

func mustCreate(t *testing.T, db *gorm.DB, value any) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("failed creating %T: %v", value, err)
	}
}

func newUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Name:         "Service Test",
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
	}
	mustCreate(t, db, user)
	return user
}

func newGallery(t *testing.T, db *gorm.DB, name string, owner *models.User, parent *models.Gallery, password string) *models.Gallery {
	t.Helper()
	gallery := &models.Gallery{
		Name:    name,
		OwnerID: owner.ID,
	}
	if parent != nil {
		gallery.ParentID = &parent.ID
	}
	if password != "" {
		hash, err := utils.HashPassword(password)
		if err != nil {
			t.Fatalf("failed hashing password: %v", err)
		}
		gallery.PasswordHash = &hash
	}
	mustCreate(t, db, gallery)
	return gallery
}

func newPhoto(t *testing.T, db *gorm.DB, gallery *models.Gallery, filename string, rating int) *models.Photo {
	t.Helper()
	photo := &models.Photo{
		GalleryID:   gallery.ID,
		Filename:    filename,
		Rating:      rating,
		MimeType:    "image/jpeg",
		Size:        1024,
		StoragePath: gallery.ID.String() + "/original/" + filename,
		MediumPath:  gallery.ID.String() + "/medium/" + filename,
	}
	mustCreate(t, db, photo)
	return photo
}
