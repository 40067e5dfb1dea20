package galleryclient

import "time"

// User mirrors the backend User model fields relevant to clients.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Gallery mirrors the backend Gallery model.
type Gallery struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerID"`
	ParentID  *string   `json:"parentID,omitempty"`
	Protected bool      `json:"protected"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Photo mirrors the backend Photo model plus the client-held comment list.
type Photo struct {
	ID            string    `json:"id"`
	GalleryID     string    `json:"galleryID"`
	Filename      string    `json:"filename"`
	AltText       string    `json:"altText,omitempty"`
	Rating        int       `json:"rating"`
	MimeType      string    `json:"mimeType,omitempty"`
	Size          int64     `json:"size,omitempty"`
	ThumbnailPath string    `json:"thumbnailPath,omitempty"`
	MediumPath    string    `json:"mediumPath,omitempty"`
	IsLiked       bool      `json:"isLiked"`
	CreatedAt     time.Time `json:"createdAt"`

	Comments []Comment `json:"comments,omitempty"`
}

// Comment mirrors the backend Comment model.
type Comment struct {
	ID         string    `json:"id"`
	PhotoID    string    `json:"photoID"`
	AuthorName string    `json:"authorName"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RatedPhoto is the rating endpoints' canonical per-photo result.
type RatedPhoto struct {
	ID     string `json:"id"`
	Rating int    `json:"rating"`
}

// LikeResult is returned by the like toggle endpoint. IsLiked carries the
// canonical, server-derived status, which may differ from what the client
// asked for.
type LikeResult struct {
	PhotoID string `json:"photoID"`
	IsLiked bool   `json:"isLiked"`
}

// BatchRatingResponse is returned by POST /photos/batch/rating.
type BatchRatingResponse struct {
	Success bool         `json:"success"`
	Photos  []RatedPhoto `json:"photos"`
}

// BatchDeleteResponse is returned by DELETE /photos/batch. Success
// and Failed are per-item counts derived from Deleted and Errors.
type BatchDeleteResponse struct {
	Deleted []string `json:"deleted"`
	Errors  []struct {
		PhotoID string `json:"photoId"`
		Error   string `json:"error"`
	} `json:"errors"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// LoginResponse is returned by POST /auth/login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
