package services

import (
	"context"

	"github.com/phototree/backend/internal/models"
	"github.com/phototree/backend/pkg/utils"
	"gorm.io/gorm"
)

// Principal is the acting identity for an access check: an
// authenticated user, or an anonymous visitor plus whatever plaintext
// password they supplied.
type Principal struct {
	User     *models.User
	Password string
}

func (p Principal) IsAnonymous() bool {
	return p.User == nil
}

type AccessService struct {
	DB *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{DB: db}
}

// Root walks ParentID links to the ultimate ancestor. The walk is an
// explicit loop; parent links form a tree, cycles are rejected at
// write time.
func (a *AccessService) Root(ctx context.Context, gallery *models.Gallery) (*models.Gallery, error) {
	current := *gallery
	for current.ParentID != nil {
		var parent models.Gallery
		if err := a.DB.WithContext(ctx).First(&parent, "id = ?", *current.ParentID).Error; err != nil {
			return nil, err
		}
		current = parent
	}
	return &current, nil
}

// EffectivePassword returns the root ancestor's password hash, nil
// when the tree is unprotected. For any node g,
// EffectivePassword(g) == EffectivePassword(root(g)).
func (a *AccessService) EffectivePassword(ctx context.Context, gallery *models.Gallery) (*string, error) {
	root, err := a.Root(ctx, gallery)
	if err != nil {
		return nil, err
	}
	if root.PasswordHash == nil || *root.PasswordHash == "" {
		return nil, nil
	}
	return root.PasswordHash, nil
}

// CanRead decides read permission against the gallery's root: admins
// always pass, then root ownership, then an assignment on the root.
// Anonymous principals pass only for unprotected trees or with the
// matching plaintext password.
func (a *AccessService) CanRead(ctx context.Context, principal Principal, gallery *models.Gallery) bool {
	root, err := a.Root(ctx, gallery)
	if err != nil {
		return false
	}

	if !principal.IsAnonymous() {
		if principal.User.Role == models.UserRoleAdmin {
			return true
		}
		if principal.User.ID == root.OwnerID {
			return true
		}
		var count int64
		if err := a.DB.WithContext(ctx).Model(&models.GalleryAssignment{}).
			Where("gallery_id = ? AND user_id = ?", root.ID, principal.User.ID).
			Count(&count).Error; err == nil && count > 0 {
			return true
		}
		return false
	}

	if root.PasswordHash == nil || *root.PasswordHash == "" {
		return true
	}
	if principal.Password == "" {
		return false
	}
	return utils.CheckPassword(principal.Password, *root.PasswordHash)
}

// CanWrite requires read access plus a mutating role. Ownership or an
// assignment never grants write on its own.
func (a *AccessService) CanWrite(ctx context.Context, principal Principal, gallery *models.Gallery) bool {
	if principal.IsAnonymous() || !principal.User.CanMutate() {
		return false
	}
	return a.CanRead(ctx, principal, gallery)
}
