package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/phototree/backend/internal/models"
)

func TestNotifyService_EmitAndRead(t *testing.T) {
	db := setupServiceTestDB(t)
	service := NewNotifyService(db, 100)

	owner := newUser(t, db, "notify@test.com", models.UserRoleCreator)
	gallery := newGallery(t, db, "notify-gallery", owner, nil, "")

	// More entries than the read path ever serves.
	for i := 0; i < 60; i++ {
		service.Emit(NotificationEntry{
			RecipientID: owner.ID,
			GalleryID:   gallery.ID,
			Type:        models.NotificationTypeComment,
			Message:     fmt.Sprintf("comment %d", i),
			ActorName:   "Guest",
		})
	}
	service.Close()

	var total int64
	if err := db.Model(&models.Notification{}).Count(&total).Error; err != nil {
		t.Fatalf("counting notifications: %v", err)
	}
	if total != 60 {
		t.Fatalf("expected all 60 rows persisted, got %d", total)
	}

	rows, err := service.Latest(context.TODO(), owner.ID)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if len(rows) != 50 {
		t.Fatalf("expected the read path to cap at 50, got %d", len(rows))
	}

	count, err := service.UnreadCount(context.TODO(), owner.ID)
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if count != 60 {
		t.Fatalf("expected 60 unread, got %d", count)
	}
}

func TestNotifyService_MarkRead(t *testing.T) {
	db := setupServiceTestDB(t)
	service := NewNotifyService(db, 10)
	defer service.Close()

	owner := newUser(t, db, "notify-read@test.com", models.UserRoleCreator)
	other := newUser(t, db, "notify-other@test.com", models.UserRoleCreator)
	gallery := newGallery(t, db, "notify-read-gallery", owner, nil, "")

	row := &models.Notification{UserID: owner.ID, GalleryID: gallery.ID, Type: models.NotificationTypeLike, Message: "m", ActorName: "Guest"}
	mustCreate(t, db, row)

	t.Run("recipient may mark read", func(t *testing.T) {
		if err := service.MarkRead(context.TODO(), owner.ID, row.ID); err != nil {
			t.Fatalf("MarkRead failed: %v", err)
		}
	})

	t.Run("other users get not-found", func(t *testing.T) {
		if err := service.MarkRead(context.TODO(), other.ID, row.ID); err == nil {
			t.Fatal("expected an error marking a foreign notification")
		}
	})

	t.Run("unknown id gets not-found", func(t *testing.T) {
		if err := service.MarkRead(context.TODO(), owner.ID, uuid.New()); err == nil {
			t.Fatal("expected an error for an unknown id")
		}
	})
}

func TestNotifyService_FullQueueDropsSilently(t *testing.T) {
	db := setupServiceTestDB(t)
	service := NewNotifyService(db, 1)

	owner := newUser(t, db, "notify-full@test.com", models.UserRoleCreator)
	gallery := newGallery(t, db, "notify-full-gallery", owner, nil, "")

	// Flood well past the buffer; Emit must never block or panic even
	// when entries are dropped.
	for i := 0; i < 500; i++ {
		service.Emit(NotificationEntry{
			RecipientID: owner.ID,
			GalleryID:   gallery.ID,
			Type:        models.NotificationTypeDownload,
			Message:     "burst",
			ActorName:   "Guest",
		})
	}
	service.Close()

	var total int64
	if err := db.Model(&models.Notification{}).Count(&total).Error; err != nil {
		t.Fatalf("counting notifications: %v", err)
	}
	if total == 0 {
		t.Fatal("expected at least one entry to survive the burst")
	}
	if total > 500 {
		t.Fatalf("impossible notification count %d", total)
	}
}
