package handlers

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/phototree/backend/internal/middleware"
	"github.com/phototree/backend/internal/models"
	"github.com/phototree/backend/internal/services"
	"github.com/phototree/backend/internal/storage"
	"github.com/phototree/backend/pkg/logger"
	"github.com/phototree/backend/pkg/utils"
	"gorm.io/gorm"
)

type PhotosHandler struct {
	DB      *gorm.DB
	Storage *storage.MinIOClient
	Images  *services.ImageService
	Access  *services.AccessService
	Cascade *services.CascadeService
	Batch   *services.BatchService
	Notify  *services.NotifyService
}

func NewPhotosHandler(db *gorm.DB, storageClient *storage.MinIOClient, images *services.ImageService, access *services.AccessService, cascade *services.CascadeService, batch *services.BatchService, notify *services.NotifyService) *PhotosHandler {
	return &PhotosHandler{
		DB:      db,
		Storage: storageClient,
		Images:  images,
		Access:  access,
		Cascade: cascade,
		Batch:   batch,
		Notify:  notify,
	}
}

func (h *PhotosHandler) Upload(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	galleryID, err := parseUUID(c.FormValue("galleryID"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid galleryID")
	}

	var gallery models.Gallery
	if err := h.DB.First(&gallery, "id = ?", galleryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "gallery not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading gallery")
	}
	if !h.Access.CanRead(c.Context(), principal(c, ""), &gallery) {
		return utils.Error(c, fiber.StatusNotFound, "gallery not found")
	}
	if !h.Access.CanWrite(c.Context(), principal(c, ""), &gallery) {
		return utils.Error(c, fiber.StatusForbidden, "no permission to upload to gallery")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "file is required")
	}

	filename := filepath.Base(strings.TrimSpace(fileHeader.Filename))
	if filename == "" {
		return utils.Error(c, fiber.StatusBadRequest, "invalid filename")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(filename))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	stream, err := fileHeader.Open()
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed opening uploaded file")
	}
	defer stream.Close()

	paths, err := h.Images.Derive(c.Context(), gallery.ID, filename, stream, fileHeader.Size, contentType)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed processing image")
	}

	photo := models.Photo{
		GalleryID:     gallery.ID,
		Filename:      filename,
		AltText:       strings.TrimSpace(c.FormValue("altText")),
		MimeType:      contentType,
		Size:          fileHeader.Size,
		StoragePath:   paths.Original,
		MediumPath:    paths.Medium,
		ThumbnailPath: paths.Thumbnail,
	}
	if err := h.DB.Create(&photo).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating photo record")
	}

	logger.InfoWithUser(currentUser.ID.String(), "photo_uploaded", map[string]interface{}{
		"photo_id":   photo.ID.String(),
		"gallery_id": gallery.ID.String(),
		"filename":   filename,
		"size":       fileHeader.Size,
	})

	return utils.Success(c, fiber.StatusCreated, photo)
}

func (h *PhotosHandler) Get(c *fiber.Ctx) error {
	photo, _, ok := h.readablePhoto(c)
	if !ok {
		return nil
	}
	photo.IsLiked = likeStatus(h.DB, photo.ID)
	return utils.Success(c, fiber.StatusOK, photo)
}

func (h *PhotosHandler) Download(c *fiber.Ctx) error {
	photo, gallery, ok := h.readablePhoto(c)
	if !ok {
		return nil
	}

	obj, err := h.Storage.Download(c.Context(), photo.StoragePath)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed downloading photo")
	}

	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return utils.Error(c, fiber.StatusInternalServerError, "failed reading object metadata")
	}

	h.emitPhotoEvent(c, gallery, photo, models.NotificationTypeDownload,
		fmt.Sprintf("%s downloaded \"%s\"", actorName(c), photo.Filename))

	c.Set("Content-Type", photo.MimeType)
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", photo.Filename))
	return c.SendStream(obj, int(stat.Size))
}

type ratingRequest struct {
	Rating int `json:"rating"`
}

// SetRating stores a 0..5 rating (0 clears it). Any reader may rate;
// rating is not a gallery mutation.
func (h *PhotosHandler) SetRating(c *fiber.Ctx) error {
	photo, gallery, ok := h.readablePhoto(c)
	if !ok {
		return nil
	}

	var req ratingRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Rating < 0 || req.Rating > 5 {
		return utils.Error(c, fiber.StatusBadRequest, "rating must be between 0 and 5")
	}

	if err := h.DB.Model(photo).Update("rating", req.Rating).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating rating")
	}
	photo.Rating = req.Rating

	h.emitPhotoEvent(c, gallery, photo, models.NotificationTypeRating,
		fmt.Sprintf("%s rated \"%s\" %d", actorName(c), photo.Filename, req.Rating))

	return utils.Success(c, fiber.StatusOK, services.RatedPhoto{ID: photo.ID, Rating: photo.Rating})
}

type likeRequest struct {
	IsLiked bool `json:"isLiked"`
}

// ToggleLike replaces the photo's like rows with a single new row.
// The response carries the canonical status derived by majority vote
// over the remaining rows, which is what clients must reconcile to.
func (h *PhotosHandler) ToggleLike(c *fiber.Ctx) error {
	photo, gallery, ok := h.readablePhoto(c)
	if !ok {
		return nil
	}

	var req likeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.DB.Where("photo_id = ?", photo.ID).Delete(&models.PhotoLike{}).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed clearing likes")
	}
	like := models.PhotoLike{PhotoID: photo.ID, IsLiked: req.IsLiked}
	if err := h.DB.Create(&like).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed recording like")
	}

	canonical := likeStatus(h.DB, photo.ID)

	if req.IsLiked {
		h.emitPhotoEvent(c, gallery, photo, models.NotificationTypeLike,
			fmt.Sprintf("%s liked \"%s\"", actorName(c), photo.Filename))
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"photoID": photo.ID,
		"isLiked": canonical,
	})
}

func (h *PhotosHandler) ListComments(c *fiber.Ctx) error {
	photo, _, ok := h.readablePhoto(c)
	if !ok {
		return nil
	}

	var comments []models.Comment
	if err := h.DB.Where("photo_id = ?", photo.ID).Order("created_at ASC").Find(&comments).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing comments")
	}
	return utils.Success(c, fiber.StatusOK, comments)
}

type commentRequest struct {
	AuthorName string `json:"authorName"`
	Text       string `json:"text"`
}

func (h *PhotosHandler) AddComment(c *fiber.Ctx) error {
	photo, gallery, ok := h.readablePhoto(c)
	if !ok {
		return nil
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return utils.Error(c, fiber.StatusBadRequest, "text is required")
	}

	author := strings.TrimSpace(req.AuthorName)
	if author == "" {
		author = actorName(c)
	}

	comment := models.Comment{
		PhotoID:    photo.ID,
		AuthorName: author,
		Text:       text,
	}
	if err := h.DB.Create(&comment).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating comment")
	}

	h.emitPhotoEvent(c, gallery, photo, models.NotificationTypeComment,
		fmt.Sprintf("%s commented on \"%s\"", author, photo.Filename))

	return utils.Success(c, fiber.StatusCreated, comment)
}

func (h *PhotosHandler) Delete(c *fiber.Ctx) error {
	photo, gallery, ok := h.readablePhoto(c)
	if !ok {
		return nil
	}
	if !h.Access.CanWrite(c.Context(), principal(c, ""), gallery) {
		return utils.Error(c, fiber.StatusForbidden, "no permission to delete photo")
	}

	if err := h.Cascade.DeletePhoto(c.Context(), photo); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed deleting photo")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type batchRatingRequest struct {
	PhotoIDs []string `json:"photoIDs"`
	Rating   int      `json:"rating"`
}

// BatchRating applies one rating across several photos. The response
// lists only the ids that still resolve to a photo afterwards; ids
// that vanished mid-flight are silently absent, not errors.
func (h *PhotosHandler) BatchRating(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req batchRatingRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.PhotoIDs) == 0 {
		return utils.Error(c, fiber.StatusBadRequest, "photoIDs must not be empty")
	}
	ids, err := parseUUIDList(req.PhotoIDs)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid photo id in list")
	}

	photos, err := h.Batch.SetRating(c.Context(), ids, req.Rating, currentUser.ID, currentUser.Name)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRating) {
			return utils.Error(c, fiber.StatusBadRequest, err.Error())
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed applying batch rating")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"photos":  photos,
	})
}

type batchDeleteRequest struct {
	PhotoIDs []string `json:"photoIDs"`
}

// BatchDelete deletes several photos, reporting per-item outcomes.
// Partial failure is data in the 200 response, never a transport
// error; only a structurally invalid request is rejected outright.
func (h *PhotosHandler) BatchDelete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if !currentUser.CanMutate() {
		return utils.Error(c, fiber.StatusForbidden, "insufficient role")
	}

	var req batchDeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.PhotoIDs) == 0 {
		return utils.Error(c, fiber.StatusBadRequest, "photoIDs must not be empty")
	}
	ids, err := parseUUIDList(req.PhotoIDs)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid photo id in list")
	}

	result := h.Batch.DeletePhotos(c.Context(), ids, currentUser.ID, currentUser.Name)

	// "success" and "failed" are the derived per-item counts, not a
	// boolean status; a 200 already means the batch was processed.
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"deleted": result.Deleted,
		"errors":  result.Errors,
		"success": result.Success,
		"failed":  result.Failed,
	})
}

// readablePhoto loads the :id photo and its gallery, enforcing the
// read policy with the same not-found answer for denied and absent.
func (h *PhotosHandler) readablePhoto(c *fiber.Ctx) (*models.Photo, *models.Gallery, bool) {
	photoID, err := parseUUID(c.Params("id"))
	if err != nil {
		_ = utils.Error(c, fiber.StatusBadRequest, "invalid photo id")
		return nil, nil, false
	}

	var photo models.Photo
	if err := h.DB.First(&photo, "id = ?", photoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = utils.Error(c, fiber.StatusNotFound, "photo not found")
			return nil, nil, false
		}
		_ = utils.Error(c, fiber.StatusInternalServerError, "failed loading photo")
		return nil, nil, false
	}

	var gallery models.Gallery
	if err := h.DB.First(&gallery, "id = ?", photo.GalleryID).Error; err != nil {
		_ = utils.Error(c, fiber.StatusNotFound, "photo not found")
		return nil, nil, false
	}

	if !h.Access.CanRead(c.Context(), principal(c, ""), &gallery) {
		_ = utils.Error(c, fiber.StatusNotFound, "photo not found")
		return nil, nil, false
	}

	return &photo, &gallery, true
}

// emitPhotoEvent notifies the gallery owner about activity on their
// photo. Self-activity is skipped; emission never blocks or fails the
// request.
func (h *PhotosHandler) emitPhotoEvent(c *fiber.Ctx, gallery *models.Gallery, photo *models.Photo, kind models.NotificationType, message string) {
	if h.Notify == nil {
		return
	}
	if user := middleware.GetCurrentUser(c); user != nil && user.ID == gallery.OwnerID {
		return
	}
	photoID := photo.ID
	h.Notify.Emit(services.NotificationEntry{
		RecipientID: gallery.OwnerID,
		GalleryID:   gallery.ID,
		PhotoID:     &photoID,
		Type:        kind,
		Message:     message,
		ActorName:   actorName(c),
	})
}

// likeStatus derives the canonical like state by majority vote over
// the photo's like rows.
func likeStatus(db *gorm.DB, photoID uuid.UUID) bool {
	var likes []models.PhotoLike
	if err := db.Where("photo_id = ?", photoID).Find(&likes).Error; err != nil {
		return false
	}
	var yes, no int
	for _, like := range likes {
		if like.IsLiked {
			yes++
		} else {
			no++
		}
	}
	return yes > no
}

// attachLikeStatus fills the derived IsLiked field for a photo slice
// with a single query.
func attachLikeStatus(db *gorm.DB, photos []models.Photo) {
	if len(photos) == 0 {
		return
	}

	ids := make([]uuid.UUID, len(photos))
	for i := range photos {
		ids[i] = photos[i].ID
	}

	var likes []models.PhotoLike
	if err := db.Where("photo_id IN ?", ids).Find(&likes).Error; err != nil {
		return
	}

	tally := make(map[uuid.UUID]int, len(photos))
	for _, like := range likes {
		if like.IsLiked {
			tally[like.PhotoID]++
		} else {
			tally[like.PhotoID]--
		}
	}
	for i := range photos {
		photos[i].IsLiked = tally[photos[i].ID] > 0
	}
}
