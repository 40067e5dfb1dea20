package models

import "github.com/google/uuid"

// PhotoLike is an append-style row. The current like status of a photo
// is count(is_liked=true) > count(is_liked=false) over its rows. The
// toggle path deletes all rows for the photo and inserts exactly one,
// so in steady state at most one row per photo survives. Keep that
// shape: the majority-vote derivation assumes it.
type PhotoLike struct {
	BaseModel
	PhotoID uuid.UUID `json:"photoID" gorm:"type:uuid;not null;index"`
	IsLiked bool      `json:"isLiked" gorm:"not null"`
}

func (PhotoLike) TableName() string {
	return "photo_likes"
}
