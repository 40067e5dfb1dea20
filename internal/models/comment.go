package models

import "github.com/google/uuid"

// Comment is append-only; rows are never updated and disappear only
// when their photo or gallery is deleted.
type Comment struct {
	BaseModel
	PhotoID    uuid.UUID `json:"photoID" gorm:"type:uuid;not null;index"`
	AuthorName string    `json:"authorName" gorm:"type:varchar(100);not null"`
	Text       string    `json:"text" gorm:"type:text;not null"`
}

func (Comment) TableName() string {
	return "comments"
}
