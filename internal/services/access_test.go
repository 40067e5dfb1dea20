package services

import (
	"context"
	"testing"

	"github.com/phototree/backend/internal/models"
)

func TestAccessService_EffectivePassword(t *testing.T) {
	db := setupServiceTestDB(t)
	service := NewAccessService(db)

	owner := newUser(t, db, "effective@test.com", models.UserRoleCreator)
	root := newGallery(t, db, "root", owner, nil, "treasure")
	child := newGallery(t, db, "child", owner, root, "")
	grandchild := newGallery(t, db, "grandchild", owner, child, "")

	rootHash, err := service.EffectivePassword(context.TODO(), root)
	if err != nil {
		t.Fatalf("resolving root password: %v", err)
	}
	if rootHash == nil {
		t.Fatal("expected root to carry a password")
	}

	for _, node := range []*models.Gallery{child, grandchild} {
		hash, err := service.EffectivePassword(context.TODO(), node)
		if err != nil {
			t.Fatalf("resolving %s password: %v", node.Name, err)
		}
		if hash == nil || *hash != *rootHash {
			t.Errorf("expected %s to inherit the root password hash", node.Name)
		}
	}

	open := newGallery(t, db, "open", owner, nil, "")
	openChild := newGallery(t, db, "open-child", owner, open, "")
	for _, node := range []*models.Gallery{open, openChild} {
		hash, err := service.EffectivePassword(context.TODO(), node)
		if err != nil {
			t.Fatalf("resolving %s password: %v", node.Name, err)
		}
		if hash != nil {
			t.Errorf("expected %s to be unprotected", node.Name)
		}
	}
}

func TestAccessService_CanRead(t *testing.T) {
	db := setupServiceTestDB(t)
	service := NewAccessService(db)

	owner := newUser(t, db, "read-owner@test.com", models.UserRoleCreator)
	stranger := newUser(t, db, "read-stranger@test.com", models.UserRoleCreator)
	assignee := newUser(t, db, "read-assignee@test.com", models.UserRoleUser)
	admin := newUser(t, db, "read-admin@test.com", models.UserRoleAdmin)

	root := newGallery(t, db, "protected-root", owner, nil, "abc123")
	sub := newGallery(t, db, "protected-sub", owner, root, "")
	mustCreate(t, db, &models.GalleryAssignment{GalleryID: root.ID, UserID: assignee.ID})

	cases := []struct {
		name      string
		principal Principal
		gallery   *models.Gallery
		want      bool
	}{
		{"owner reads root", Principal{User: owner}, root, true},
		{"owner reads sub", Principal{User: owner}, sub, true},
		{"admin reads anything", Principal{User: admin}, sub, true},
		{"assignment on the root covers the sub", Principal{User: assignee}, sub, true},
		{"authenticated stranger is denied", Principal{User: stranger}, root, false},
		{"anonymous without password is denied", Principal{}, sub, false},
		{"anonymous with the root password passes", Principal{Password: "abc123"}, sub, true},
		{"anonymous with a wrong password is denied", Principal{Password: "wrong"}, sub, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := service.CanRead(context.TODO(), tc.principal, tc.gallery); got != tc.want {
				t.Errorf("CanRead = %v, want %v", got, tc.want)
			}
		})
	}

	open := newGallery(t, db, "open-root", owner, nil, "")
	t.Run("anonymous reads unprotected trees", func(t *testing.T) {
		if !service.CanRead(context.TODO(), Principal{}, open) {
			t.Error("expected anonymous read on an unprotected root")
		}
	})
}

func TestAccessService_CanWrite(t *testing.T) {
	db := setupServiceTestDB(t)
	service := NewAccessService(db)

	creator := newUser(t, db, "write-creator@test.com", models.UserRoleCreator)
	viewer := newUser(t, db, "write-viewer@test.com", models.UserRoleUser)

	gallery := newGallery(t, db, "write-root", creator, nil, "")
	mustCreate(t, db, &models.GalleryAssignment{GalleryID: gallery.ID, UserID: viewer.ID})

	t.Run("creator owner may write", func(t *testing.T) {
		if !service.CanWrite(context.TODO(), Principal{User: creator}, gallery) {
			t.Error("expected creator owner to write")
		}
	})

	t.Run("assigned plain user may not write", func(t *testing.T) {
		if service.CanWrite(context.TODO(), Principal{User: viewer}, gallery) {
			t.Error("read access must not imply write for plain users")
		}
	})

	t.Run("anonymous may never write", func(t *testing.T) {
		if service.CanWrite(context.TODO(), Principal{Password: "irrelevant"}, gallery) {
			t.Error("anonymous principals must never write")
		}
	})
}
