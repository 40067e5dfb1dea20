package models

import "github.com/google/uuid"

// Photo belongs to exactly one gallery and carries three stored
// renditions. Rating 0 means unrated.
type Photo struct {
	BaseModel
	GalleryID     uuid.UUID `json:"galleryID" gorm:"type:uuid;not null;index"`
	Filename      string    `json:"filename" gorm:"type:varchar(255);not null"`
	AltText       string    `json:"altText" gorm:"type:varchar(255)"`
	Rating        int       `json:"rating" gorm:"not null;default:0"`
	MimeType      string    `json:"mimeType" gorm:"type:varchar(255);not null"`
	Size          int64     `json:"size" gorm:"not null;default:0"`
	StoragePath   string    `json:"storagePath" gorm:"type:text;not null"`
	MediumPath    string    `json:"mediumPath" gorm:"type:text;not null"`
	ThumbnailPath string    `json:"thumbnailPath" gorm:"type:text;not null"`

	Gallery  Gallery     `json:"gallery,omitempty" gorm:"foreignKey:GalleryID;references:ID"`
	Likes    []PhotoLike `json:"-" gorm:"foreignKey:PhotoID"`
	Comments []Comment   `json:"-" gorm:"foreignKey:PhotoID"`

	// IsLiked is derived from the like rows, never stored.
	IsLiked bool `json:"isLiked" gorm:"-"`
}

func (Photo) TableName() string {
	return "photos"
}
