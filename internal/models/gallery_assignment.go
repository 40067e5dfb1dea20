package models

import "github.com/google/uuid"

// GalleryAssignment grants a non-owner user read access to a root
// gallery and everything beneath it.
type GalleryAssignment struct {
	BaseModel
	GalleryID uuid.UUID `json:"galleryID" gorm:"type:uuid;not null;index:idx_assignment_pair,unique"`
	UserID    uuid.UUID `json:"userID" gorm:"type:uuid;not null;index:idx_assignment_pair,unique"`

	Gallery Gallery `json:"gallery,omitempty" gorm:"foreignKey:GalleryID;references:ID"`
	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
}

func (GalleryAssignment) TableName() string {
	return "gallery_assignments"
}
