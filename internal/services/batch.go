package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phototree/backend/internal/models"
	"github.com/phototree/backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrInvalidRating = errors.New("rating must be between 0 and 5")

type RatedPhoto struct {
	ID     uuid.UUID `json:"id"`
	Rating int       `json:"rating"`
}

type BatchDeleteError struct {
	PhotoID uuid.UUID `json:"photoId"`
	Error   string    `json:"error"`
}

type BatchDeleteResult struct {
	Deleted []uuid.UUID        `json:"deleted"`
	Errors  []BatchDeleteError `json:"errors"`
	Success int                `json:"success"`
	Failed  int                `json:"failed"`
}

// BatchService applies a mutation across a list of photo ids with
// per-item outcomes. Items are processed sequentially and outside any
// transaction: a failure partway leaves earlier items committed, and
// partial failure is result data, not an error.
type BatchService struct {
	DB      *gorm.DB
	Cascade *CascadeService
	Notify  *NotifyService
}

func NewBatchService(db *gorm.DB, cascade *CascadeService, notify *NotifyService) *BatchService {
	return &BatchService{DB: db, Cascade: cascade, Notify: notify}
}

// SetRating validates the rating once for the whole call, then updates
// each photo in turn, continuing past item-level failures. The result
// lists only ids that still resolve to an existing photo afterwards.
func (s *BatchService) SetRating(ctx context.Context, photoIDs []uuid.UUID, rating int, actorID uuid.UUID, actorName string) ([]RatedPhoto, error) {
	if rating < 0 || rating > 5 {
		return nil, ErrInvalidRating
	}

	for _, id := range photoIDs {
		err := s.DB.WithContext(ctx).Model(&models.Photo{}).
			Where("id = ?", id).
			Update("rating", rating).Error
		if err != nil {
			logger.Error("batch_rating_update_failed", err, map[string]interface{}{
				"photo_id": id.String(),
			})
		}
	}

	var photos []models.Photo
	if err := s.DB.WithContext(ctx).
		Select("id", "rating", "gallery_id", "filename").
		Where("id IN ?", photoIDs).
		Find(&photos).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.Photo, len(photos))
	for i := range photos {
		byID[photos[i].ID] = &photos[i]
	}

	result := make([]RatedPhoto, 0, len(photos))
	var affected []*models.Photo
	for _, id := range photoIDs {
		photo, ok := byID[id]
		if !ok {
			continue
		}
		result = append(result, RatedPhoto{ID: photo.ID, Rating: photo.Rating})
		affected = append(affected, photo)
	}

	s.notifyBatch(ctx, affected, models.NotificationTypeRating, actorID, actorName,
		fmt.Sprintf("rated %d", rating))

	return result, nil
}

// DeletePhotos deletes each photo with the full single-photo cleanup.
// A missing id counts as already deleted: the operation is idempotent
// per item.
func (s *BatchService) DeletePhotos(ctx context.Context, photoIDs []uuid.UUID, actorID uuid.UUID, actorName string) BatchDeleteResult {
	result := BatchDeleteResult{
		Deleted: make([]uuid.UUID, 0, len(photoIDs)),
		Errors:  make([]BatchDeleteError, 0),
	}

	var affected []*models.Photo
	for _, id := range photoIDs {
		var photo models.Photo
		err := s.DB.WithContext(ctx).First(&photo, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result.Deleted = append(result.Deleted, id)
			continue
		}
		if err != nil {
			result.Errors = append(result.Errors, BatchDeleteError{PhotoID: id, Error: err.Error()})
			continue
		}

		if err := s.Cascade.DeletePhoto(ctx, &photo); err != nil {
			result.Errors = append(result.Errors, BatchDeleteError{PhotoID: id, Error: err.Error()})
			continue
		}
		result.Deleted = append(result.Deleted, id)
		affected = append(affected, &photo)
	}

	result.Success = len(result.Deleted)
	result.Failed = len(result.Errors)

	s.notifyBatch(ctx, affected, models.NotificationTypeDelete, actorID, actorName, "deleted")

	return result
}

// notifyBatch emits a single notification after the mutation is
// committed: one per photo for a single-item batch, otherwise an
// aggregate naming the first affected photo "and N others". Owners
// are not told about their own batches. Emission is fire-and-forget
// via the notify queue.
func (s *BatchService) notifyBatch(ctx context.Context, affected []*models.Photo, kind models.NotificationType, actorID uuid.UUID, actorName, verb string) {
	if s.Notify == nil || len(affected) == 0 {
		return
	}

	first := affected[0]

	var owner uuid.UUID
	var gallery models.Gallery
	if err := s.DB.WithContext(ctx).Select("id", "owner_id").First(&gallery, "id = ?", first.GalleryID).Error; err != nil {
		// The gallery may already be gone (batch delete of its last
		// photos racing a cascade); nothing to notify then.
		return
	}
	owner = gallery.OwnerID
	if owner == actorID {
		return
	}

	message := fmt.Sprintf("%s %s \"%s\"", actorName, verb, first.Filename)
	if len(affected) > 1 {
		message = fmt.Sprintf("%s %s \"%s\" and %d others", actorName, verb, first.Filename, len(affected)-1)
	}

	photoID := first.ID
	s.Notify.Emit(NotificationEntry{
		RecipientID: owner,
		GalleryID:   first.GalleryID,
		PhotoID:     &photoID,
		Type:        kind,
		Message:     message,
		ActorName:   actorName,
	})
}
