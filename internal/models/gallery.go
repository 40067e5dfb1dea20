package models

import "github.com/google/uuid"

// Gallery is a node in the gallery tree. Only root galleries (ParentID
// nil) carry a password hash; sub-galleries always defer to their root.
type Gallery struct {
	BaseModel
	Name         string     `json:"name" gorm:"type:varchar(255);not null"`
	OwnerID      uuid.UUID  `json:"ownerID" gorm:"type:uuid;not null;index"`
	ParentID     *uuid.UUID `json:"parentID,omitempty" gorm:"type:uuid;index"`
	PasswordHash *string    `json:"-" gorm:"type:text"`

	Parent   *Gallery  `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
	Children []Gallery `json:"children,omitempty" gorm:"foreignKey:ParentID"`
	Owner    User      `json:"owner,omitempty" gorm:"foreignKey:OwnerID;references:ID"`
	Photos   []Photo   `json:"-" gorm:"foreignKey:GalleryID"`
}

func (Gallery) TableName() string {
	return "galleries"
}

// IsProtected reports whether this node itself carries a password.
// Callers that need the inherited password must resolve the root first.
func (g *Gallery) IsProtected() bool {
	return g.PasswordHash != nil && *g.PasswordHash != ""
}
