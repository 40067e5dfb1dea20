package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/phototree/backend/internal/models"
)

// recordingStore fakes the object store and optionally fails every
// removal.
type recordingStore struct {
	mu      sync.Mutex
	removed []string
	fail    bool
}

func (s *recordingStore) Remove(_ context.Context, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("object store unavailable")
	}
	s.removed = append(s.removed, objectName)
	return nil
}

func TestCascadeService_DeleteSubtree(t *testing.T) {
	db := setupServiceTestDB(t)
	store := &recordingStore{}
	service := NewCascadeService(db, store)

	owner := newUser(t, db, "cascade@test.com", models.UserRoleCreator)
	assignee := newUser(t, db, "cascade-assignee@test.com", models.UserRoleUser)

	root := newGallery(t, db, "root", owner, nil, "")
	childA := newGallery(t, db, "child-a", owner, root, "")
	childB := newGallery(t, db, "child-b", owner, root, "")
	grandchild := newGallery(t, db, "grandchild", owner, childA, "")

	photoRoot := newPhoto(t, db, root, "r.jpg", 0)
	photoDeep := newPhoto(t, db, grandchild, "g.jpg", 4)
	newPhoto(t, db, childB, "b.jpg", 1)

	mustCreate(t, db, &models.PhotoLike{PhotoID: photoDeep.ID, IsLiked: true})
	mustCreate(t, db, &models.Comment{PhotoID: photoRoot.ID, AuthorName: "Guest", Text: "hello"})
	mustCreate(t, db, &models.Notification{UserID: owner.ID, GalleryID: grandchild.ID, PhotoID: &photoDeep.ID, Type: models.NotificationTypeLike, Message: "m", ActorName: "Guest"})
	mustCreate(t, db, &models.GalleryAssignment{GalleryID: root.ID, UserID: assignee.ID})

	// A second tree that must survive untouched.
	other := newGallery(t, db, "other-root", owner, nil, "")
	survivor := newPhoto(t, db, other, "keep.jpg", 5)

	if err := service.DeleteSubtree(context.TODO(), root.ID); err != nil {
		t.Fatalf("DeleteSubtree failed: %v", err)
	}

	for table, model := range map[string]any{
		"photo_likes":         &models.PhotoLike{},
		"comments":            &models.Comment{},
		"notifications":       &models.Notification{},
		"gallery_assignments": &models.GalleryAssignment{},
	} {
		var count int64
		if err := db.Model(model).Count(&count).Error; err != nil {
			t.Fatalf("counting %s: %v", table, err)
		}
		if count != 0 {
			t.Errorf("expected zero %s rows, found %d", table, count)
		}
	}

	var galleries int64
	if err := db.Model(&models.Gallery{}).Count(&galleries).Error; err != nil {
		t.Fatalf("counting galleries: %v", err)
	}
	if galleries != 1 {
		t.Errorf("expected only the unrelated root to survive, found %d galleries", galleries)
	}

	var photos []models.Photo
	if err := db.Find(&photos).Error; err != nil {
		t.Fatalf("listing photos: %v", err)
	}
	if len(photos) != 1 || photos[0].ID != survivor.ID {
		t.Errorf("expected only the unrelated photo to survive, got %d", len(photos))
	}

	// Three photos deleted, each with an original and a medium path.
	if len(store.removed) != 6 {
		t.Errorf("expected 6 removed objects, got %d (%v)", len(store.removed), store.removed)
	}
}

func TestCascadeService_ObjectErrorsDoNotAbort(t *testing.T) {
	db := setupServiceTestDB(t)
	service := NewCascadeService(db, &recordingStore{fail: true})

	owner := newUser(t, db, "cascade-fail@test.com", models.UserRoleCreator)
	gallery := newGallery(t, db, "fail-root", owner, nil, "")
	photo := newPhoto(t, db, gallery, "f.jpg", 0)

	if err := service.DeletePhoto(context.TODO(), photo); err != nil {
		t.Fatalf("object-store failures must not surface: %v", err)
	}

	var count int64
	if err := db.Model(&models.Photo{}).Count(&count).Error; err != nil {
		t.Fatalf("counting photos: %v", err)
	}
	if count != 0 {
		t.Error("photo row must be gone even when file deletion fails")
	}
}

func TestCascadeService_NilStore(t *testing.T) {
	db := setupServiceTestDB(t)
	service := NewCascadeService(db, nil)

	owner := newUser(t, db, "cascade-nil@test.com", models.UserRoleCreator)
	gallery := newGallery(t, db, "nil-root", owner, nil, "")
	newPhoto(t, db, gallery, "n.jpg", 0)

	if err := service.DeleteSubtree(context.TODO(), gallery.ID); err != nil {
		t.Fatalf("DeleteSubtree with nil store failed: %v", err)
	}
}
