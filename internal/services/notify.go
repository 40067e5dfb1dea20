package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/phototree/backend/internal/models"
	"github.com/phototree/backend/pkg/logger"
	"gorm.io/gorm"
)

// latestNotificationLimit caps the read path to the newest rows per
// recipient.
const latestNotificationLimit = 50

type NotificationEntry struct {
	RecipientID uuid.UUID
	GalleryID   uuid.UUID
	PhotoID     *uuid.UUID
	Type        models.NotificationType
	Message     string
	ActorName   string
}

// NotifyService records activity messages for gallery owners. Emit is
// fire-and-forget: it never blocks the caller, and insert failures are
// logged and swallowed, never surfaced to the triggering mutation.
type NotifyService struct {
	DB    *gorm.DB
	queue chan models.Notification
	done  chan struct{}
}

func NewNotifyService(db *gorm.DB, bufferSize int) *NotifyService {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	s := &NotifyService{
		DB:    db,
		queue: make(chan models.Notification, bufferSize),
		done:  make(chan struct{}),
	}
	go s.processQueue()
	return s
}

func (s *NotifyService) Emit(entry NotificationEntry) {
	row := models.Notification{
		UserID:    entry.RecipientID,
		GalleryID: entry.GalleryID,
		PhotoID:   entry.PhotoID,
		Type:      entry.Type,
		Message:   entry.Message,
		ActorName: entry.ActorName,
	}

	select {
	case s.queue <- row:
	default:
		logger.Warn("notification_queue_full", map[string]interface{}{
			"type":    string(entry.Type),
			"dropped": true,
		})
	}
}

func (s *NotifyService) processQueue() {
	defer close(s.done)
	for row := range s.queue {
		if err := s.DB.Create(&row).Error; err != nil {
			logger.Error("notification_insert_failed", err, map[string]interface{}{
				"type":      string(row.Type),
				"recipient": row.UserID.String(),
			})
		}
	}
}

// Close drains the queue and stops the worker. Emit must not be called
// afterwards.
func (s *NotifyService) Close() {
	close(s.queue)
	<-s.done
}

// Latest returns at most the 50 most recent notifications for a
// recipient, newest first.
func (s *NotifyService) Latest(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	var rows []models.Notification
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(latestNotificationLimit).
		Find(&rows).Error
	return rows, err
}

func (s *NotifyService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (s *NotifyService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	result := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *NotifyService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}
