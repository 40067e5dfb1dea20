package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/phototree/backend/internal/models"
	"github.com/phototree/backend/pkg/logger"
	"gorm.io/gorm"
)

// ObjectStore is the slice of the storage client the deleters need.
// *storage.MinIOClient satisfies it.
type ObjectStore interface {
	Remove(ctx context.Context, objectName string) error
}

// CascadeService removes a gallery subtree and every dependent row.
// Row deletion is authoritative and aborts on error; file deletion is
// best-effort and decoupled from it. There is no wrapping transaction:
// a crash mid-sequence can leave orphan files, never orphan rows.
type CascadeService struct {
	DB    *gorm.DB
	Store ObjectStore
}

func NewCascadeService(db *gorm.DB, store ObjectStore) *CascadeService {
	return &CascadeService{DB: db, Store: store}
}

// DeleteSubtree deletes the gallery, its descendants and all dependent
// entities, children before parents.
func (s *CascadeService) DeleteSubtree(ctx context.Context, galleryID uuid.UUID) error {
	order, err := s.subtreeOrder(ctx, galleryID)
	if err != nil {
		return err
	}

	// order is parents-first; walk it backwards so every child gallery
	// is gone before its parent row is touched.
	for i := len(order) - 1; i >= 0; i-- {
		if err := s.deleteGallery(ctx, order[i]); err != nil {
			return err
		}
	}
	return nil
}

// subtreeOrder collects the subtree ids breadth-first with an explicit
// queue; no unbounded recursion on deep trees.
func (s *CascadeService) subtreeOrder(ctx context.Context, rootID uuid.UUID) ([]uuid.UUID, error) {
	order := make([]uuid.UUID, 0, 8)
	queue := []uuid.UUID{rootID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		var children []models.Gallery
		if err := s.DB.WithContext(ctx).Select("id").Where("parent_id = ?", current).Find(&children).Error; err != nil {
			return nil, err
		}
		for _, child := range children {
			queue = append(queue, child.ID)
		}
	}
	return order, nil
}

func (s *CascadeService) deleteGallery(ctx context.Context, galleryID uuid.UUID) error {
	var photos []models.Photo
	if err := s.DB.WithContext(ctx).Where("gallery_id = ?", galleryID).Find(&photos).Error; err != nil {
		return err
	}

	for i := range photos {
		if err := s.DeletePhoto(ctx, &photos[i]); err != nil {
			return err
		}
	}

	if err := s.DB.WithContext(ctx).Where("gallery_id = ?", galleryID).Delete(&models.Notification{}).Error; err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Where("gallery_id = ?", galleryID).Delete(&models.GalleryAssignment{}).Error; err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(&models.Gallery{}, "id = ?", galleryID).Error
}

// DeletePhoto removes a photo's comments, likes and notifications,
// then the photo row, then best-effort its three stored renditions.
// Database errors abort and surface; object-store errors are logged
// only.
func (s *CascadeService) DeletePhoto(ctx context.Context, photo *models.Photo) error {
	if err := s.DB.WithContext(ctx).Where("photo_id = ?", photo.ID).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Where("photo_id = ?", photo.ID).Delete(&models.PhotoLike{}).Error; err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Where("photo_id = ?", photo.ID).Delete(&models.Notification{}).Error; err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(&models.Photo{}, "id = ?", photo.ID).Error; err != nil {
		return err
	}

	s.removeObjects(ctx, photo)
	return nil
}

func (s *CascadeService) removeObjects(ctx context.Context, photo *models.Photo) {
	if s.Store == nil {
		return
	}
	for _, objectName := range []string{photo.StoragePath, photo.MediumPath, photo.ThumbnailPath} {
		if objectName == "" {
			continue
		}
		if err := s.Store.Remove(ctx, objectName); err != nil {
			logger.Error("photo_object_remove_failed", err, map[string]interface{}{
				"photo_id":    photo.ID.String(),
				"object_name": objectName,
			})
		}
	}
}
