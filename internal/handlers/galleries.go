package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/phototree/backend/internal/middleware"
	"github.com/phototree/backend/internal/models"
	"github.com/phototree/backend/internal/services"
	"github.com/phototree/backend/pkg/logger"
	"github.com/phototree/backend/pkg/utils"
	"gorm.io/gorm"
)

type GalleriesHandler struct {
	DB             *gorm.DB
	Access         *services.AccessService
	Cascade        *services.CascadeService
	ListingTimeout time.Duration
}

func NewGalleriesHandler(db *gorm.DB, access *services.AccessService, cascade *services.CascadeService, listingTimeout time.Duration) *GalleriesHandler {
	if listingTimeout <= 0 {
		listingTimeout = 30 * time.Second
	}
	return &GalleriesHandler{DB: db, Access: access, Cascade: cascade, ListingTimeout: listingTimeout}
}

type createGalleryRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentID"`
	Password *string `json:"password"`
}

func (h *GalleriesHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if !currentUser.CanMutate() {
		return utils.Error(c, fiber.StatusForbidden, "insufficient role")
	}

	var req createGalleryRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return utils.Error(c, fiber.StatusBadRequest, "name is required")
	}

	gallery := models.Gallery{
		Name:    name,
		OwnerID: currentUser.ID,
	}

	if req.ParentID != nil && strings.TrimSpace(*req.ParentID) != "" {
		parentID, err := parseUUID(*req.ParentID)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid parentID")
		}

		var parent models.Gallery
		if err := h.DB.First(&parent, "id = ?", parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.Error(c, fiber.StatusNotFound, "parent gallery not found")
			}
			return utils.Error(c, fiber.StatusInternalServerError, "failed loading parent")
		}
		if !h.Access.CanRead(c.Context(), principal(c, ""), &parent) {
			return utils.Error(c, fiber.StatusNotFound, "parent gallery not found")
		}
		if !h.Access.CanWrite(c.Context(), principal(c, ""), &parent) {
			return utils.Error(c, fiber.StatusForbidden, "no permission to create in parent gallery")
		}

		// Sub-galleries never carry their own password; the root's
		// password covers the whole tree. Caller input is ignored.
		gallery.ParentID = &parent.ID
		gallery.PasswordHash = nil
	} else if req.Password != nil && *req.Password != "" {
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			return utils.Error(c, fiber.StatusInternalServerError, "failed hashing password")
		}
		gallery.PasswordHash = &hash
	}

	if err := h.DB.Create(&gallery).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating gallery")
	}

	logger.InfoWithUser(currentUser.ID.String(), "gallery_created", map[string]interface{}{
		"gallery_id": gallery.ID.String(),
		"name":       gallery.Name,
		"parent_id":  gallery.ParentID,
		"protected":  gallery.IsProtected(),
	})

	return utils.Success(c, fiber.StatusCreated, gallery)
}

// List returns the root galleries the caller owns or is assigned to;
// admins see every root.
func (h *GalleriesHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var galleries []models.Gallery
	query := h.DB.Where("parent_id IS NULL")
	if currentUser.Role != models.UserRoleAdmin {
		query = query.Where(
			"owner_id = ? OR id IN (?)",
			currentUser.ID,
			h.DB.Model(&models.GalleryAssignment{}).Select("gallery_id").Where("user_id = ?", currentUser.ID),
		)
	}
	if err := query.Order("name ASC").Find(&galleries).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing galleries")
	}

	return utils.Success(c, fiber.StatusOK, galleries)
}

func (h *GalleriesHandler) Get(c *fiber.Ctx) error {
	gallery, ok := h.readableGallery(c)
	if !ok {
		return nil
	}
	return utils.Success(c, fiber.StatusOK, gallery)
}

func (h *GalleriesHandler) Children(c *fiber.Ctx) error {
	gallery, ok := h.readableGallery(c)
	if !ok {
		return nil
	}

	var children []models.Gallery
	if err := h.DB.Where("parent_id = ?", gallery.ID).Order("name ASC").Find(&children).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing children")
	}
	return utils.Success(c, fiber.StatusOK, children)
}

// Photos lists a gallery's photos under the listing timeout. Blowing
// the timeout is reported as a distinct "gallery too large" failure,
// not a generic error.
func (h *GalleriesHandler) Photos(c *fiber.Ctx) error {
	gallery, ok := h.readableGallery(c)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.ListingTimeout)
	defer cancel()

	var photos []models.Photo
	err := h.DB.WithContext(ctx).Where("gallery_id = ?", gallery.ID).Order("created_at ASC").Find(&photos).Error
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return utils.Error(c, fiber.StatusRequestTimeout, "gallery too large")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing photos")
	}

	attachLikeStatus(h.DB, photos)

	return utils.Success(c, fiber.StatusOK, photos)
}

type updateGalleryRequest struct {
	Name     *string `json:"name"`
	ParentID *string `json:"parentID"`
	Password *string `json:"password"`
}

func (h *GalleriesHandler) Update(c *fiber.Ctx) error {
	gallery, ok := h.readableGallery(c)
	if !ok {
		return nil
	}
	if !h.Access.CanWrite(c.Context(), principal(c, ""), gallery) {
		return utils.Error(c, fiber.StatusForbidden, "no permission to modify gallery")
	}

	var req updateGalleryRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return utils.Error(c, fiber.StatusBadRequest, "name cannot be empty")
		}
		gallery.Name = name
	}

	if req.ParentID != nil {
		raw := strings.TrimSpace(*req.ParentID)
		if raw == "" {
			gallery.ParentID = nil
		} else {
			parentID, err := parseUUID(raw)
			if err != nil {
				return utils.Error(c, fiber.StatusBadRequest, "invalid parentID")
			}
			if parentID == gallery.ID {
				return utils.Error(c, fiber.StatusBadRequest, "gallery cannot be its own parent")
			}

			var parent models.Gallery
			if err := h.DB.First(&parent, "id = ?", parentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return utils.Error(c, fiber.StatusNotFound, "parent gallery not found")
				}
				return utils.Error(c, fiber.StatusInternalServerError, "failed loading parent")
			}
			if !h.Access.CanRead(c.Context(), principal(c, ""), &parent) {
				return utils.Error(c, fiber.StatusNotFound, "parent gallery not found")
			}
			if !h.Access.CanWrite(c.Context(), principal(c, ""), &parent) {
				return utils.Error(c, fiber.StatusForbidden, "no permission to move into parent gallery")
			}

			inSubtree, err := h.isDescendant(gallery.ID, parent.ID)
			if err != nil {
				return utils.Error(c, fiber.StatusInternalServerError, "failed checking hierarchy")
			}
			if inSubtree {
				return utils.Error(c, fiber.StatusBadRequest, "cannot move gallery beneath its own subtree")
			}

			gallery.ParentID = &parent.ID
		}
	}

	if gallery.ParentID != nil {
		// Becoming (or staying) a sub-gallery drops any password.
		gallery.PasswordHash = nil
	} else if req.Password != nil {
		if *req.Password == "" {
			gallery.PasswordHash = nil
		} else {
			hash, err := utils.HashPassword(*req.Password)
			if err != nil {
				return utils.Error(c, fiber.StatusInternalServerError, "failed hashing password")
			}
			gallery.PasswordHash = &hash
		}
	}

	if err := h.DB.Save(gallery).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating gallery")
	}

	return utils.Success(c, fiber.StatusOK, gallery)
}

func (h *GalleriesHandler) Delete(c *fiber.Ctx) error {
	gallery, ok := h.readableGallery(c)
	if !ok {
		return nil
	}
	if !h.Access.CanWrite(c.Context(), principal(c, ""), gallery) {
		return utils.Error(c, fiber.StatusForbidden, "no permission to delete gallery")
	}

	if err := h.Cascade.DeleteSubtree(c.Context(), gallery.ID); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed deleting gallery")
	}

	currentUser := middleware.GetCurrentUser(c)
	logger.InfoWithUser(currentUser.ID.String(), "gallery_deleted", map[string]interface{}{
		"gallery_id": gallery.ID.String(),
		"name":       gallery.Name,
	})

	return c.SendStatus(fiber.StatusNoContent)
}

type assignRequest struct {
	UserID string `json:"userID"`
}

// Assign grants a user read access to the gallery's root (and thereby
// the whole tree).
func (h *GalleriesHandler) Assign(c *fiber.Ctx) error {
	gallery, ok := h.readableGallery(c)
	if !ok {
		return nil
	}
	if !h.Access.CanWrite(c.Context(), principal(c, ""), gallery) {
		return utils.Error(c, fiber.StatusForbidden, "no permission to assign users")
	}

	var req assignRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	userID, err := parseUUID(req.UserID)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid userID")
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "user not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading user")
	}

	root, err := h.Access.Root(c.Context(), gallery)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed resolving root gallery")
	}

	var existing int64
	if err := h.DB.Model(&models.GalleryAssignment{}).
		Where("gallery_id = ? AND user_id = ?", root.ID, userID).
		Count(&existing).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking assignment")
	}
	if existing > 0 {
		return utils.Error(c, fiber.StatusConflict, "user already assigned")
	}

	assignment := models.GalleryAssignment{GalleryID: root.ID, UserID: userID}
	if err := h.DB.Create(&assignment).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating assignment")
	}

	return utils.Success(c, fiber.StatusCreated, assignment)
}

func (h *GalleriesHandler) Unassign(c *fiber.Ctx) error {
	gallery, ok := h.readableGallery(c)
	if !ok {
		return nil
	}
	if !h.Access.CanWrite(c.Context(), principal(c, ""), gallery) {
		return utils.Error(c, fiber.StatusForbidden, "no permission to revoke assignments")
	}

	userID, err := parseUUID(c.Params("userId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	root, err := h.Access.Root(c.Context(), gallery)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed resolving root gallery")
	}

	result := h.DB.Where("gallery_id = ? AND user_id = ?", root.ID, userID).Delete(&models.GalleryAssignment{})
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed deleting assignment")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, "assignment not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type publicGalleryRequest struct {
	Password string `json:"password"`
}

// PublicShow serves a gallery behind its inherited password. A
// protected tree with no password supplied is 403; a wrong password is
// 401; success returns the gallery together with its photos.
func (h *GalleriesHandler) PublicShow(c *fiber.Ctx) error {
	galleryID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid gallery id")
	}

	var gallery models.Gallery
	if err := h.DB.First(&gallery, "id = ?", galleryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "gallery not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading gallery")
	}

	var req publicGalleryRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	p := principal(c, req.Password)
	if !h.Access.CanRead(c.Context(), p, &gallery) {
		effective, err := h.Access.EffectivePassword(c.Context(), &gallery)
		if err != nil {
			return utils.Error(c, fiber.StatusInternalServerError, "failed resolving gallery password")
		}
		if effective != nil && req.Password == "" {
			return utils.Error(c, fiber.StatusForbidden, "password required")
		}
		return utils.Error(c, fiber.StatusUnauthorized, "invalid password")
	}

	var photos []models.Photo
	if err := h.DB.Where("gallery_id = ?", gallery.ID).Order("created_at ASC").Find(&photos).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing photos")
	}
	attachLikeStatus(h.DB, photos)

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"gallery": gallery,
		"photos":  photos,
	})
}

// readableGallery loads the :id gallery and enforces the read policy.
// Denied access answers exactly like a missing row so existence is not
// leaked; on any failure the response has been written and ok=false.
func (h *GalleriesHandler) readableGallery(c *fiber.Ctx) (*models.Gallery, bool) {
	galleryID, err := parseUUID(c.Params("id"))
	if err != nil {
		_ = utils.Error(c, fiber.StatusBadRequest, "invalid gallery id")
		return nil, false
	}

	var gallery models.Gallery
	if err := h.DB.First(&gallery, "id = ?", galleryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = utils.Error(c, fiber.StatusNotFound, "gallery not found")
			return nil, false
		}
		_ = utils.Error(c, fiber.StatusInternalServerError, "failed loading gallery")
		return nil, false
	}

	if !h.Access.CanRead(c.Context(), principal(c, ""), &gallery) {
		_ = utils.Error(c, fiber.StatusNotFound, "gallery not found")
		return nil, false
	}

	return &gallery, true
}

// isDescendant reports whether candidate sits inside ancestor's
// subtree; reparenting onto a descendant would introduce a cycle.
func (h *GalleriesHandler) isDescendant(ancestorID, candidateID uuid.UUID) (bool, error) {
	current := candidateID
	for {
		if current == ancestorID {
			return true, nil
		}

		var gallery models.Gallery
		err := h.DB.Select("id", "parent_id").First(&gallery, "id = ?", current).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, err
		}
		if gallery.ParentID == nil {
			return false, nil
		}
		current = *gallery.ParentID
	}
}
