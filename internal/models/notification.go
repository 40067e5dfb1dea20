package models

import "github.com/google/uuid"

type NotificationType string

const (
	NotificationTypeRating   NotificationType = "rating"
	NotificationTypeLike     NotificationType = "like"
	NotificationTypeDownload NotificationType = "download"
	NotificationTypeComment  NotificationType = "comment"
	NotificationTypeDelete   NotificationType = "delete"
)

// Notification is a human-readable activity message for a gallery
// owner. Rows are written by a background emitter and only the newest
// 50 per recipient are ever served.
type Notification struct {
	BaseModel
	UserID    uuid.UUID        `json:"userID" gorm:"type:uuid;not null;index"`
	GalleryID uuid.UUID        `json:"galleryID" gorm:"type:uuid;not null;index"`
	PhotoID   *uuid.UUID       `json:"photoID,omitempty" gorm:"type:uuid;index"`
	Type      NotificationType `json:"type" gorm:"type:varchar(20);not null"`
	Message   string           `json:"message" gorm:"type:text;not null"`
	ActorName string           `json:"actorName" gorm:"type:varchar(100);not null"`
	IsRead    bool             `json:"isRead" gorm:"not null;default:false;index"`
}

func (Notification) TableName() string {
	return "notifications"
}
