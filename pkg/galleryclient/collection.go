package galleryclient

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const tempIDPrefix = "pending-"

// Collection is a client-held shared view of a gallery's photos. Mutations
// are applied speculatively before the server round trip, then reconciled
// with the server's canonical value on success or rolled back on failure.
//
// There is no per-photo version counter or request fencing: two mutations
// racing on the same photo resolve last-write-wins by completion order.
type Collection struct {
	mu     sync.Mutex
	client *Client
	photos map[string]*Photo
	order  []string
}

// NewCollection creates an empty Collection bound to an API client.
func NewCollection(client *Client) *Collection {
	return &Collection{
		client: client,
		photos: make(map[string]*Photo),
	}
}

// LoadGallery replaces the collection's contents with the photos of the
// given gallery as the server currently sees them.
func (col *Collection) LoadGallery(galleryID string) error {
	var resp Response[[]Photo]
	if err := col.client.Get(fmt.Sprintf("/galleries/%s/photos", galleryID), nil, &resp); err != nil {
		return err
	}

	col.mu.Lock()
	defer col.mu.Unlock()
	col.photos = make(map[string]*Photo, len(resp.Data))
	col.order = col.order[:0]
	for i := range resp.Data {
		p := resp.Data[i]
		col.photos[p.ID] = &p
		col.order = append(col.order, p.ID)
	}
	return nil
}

// Load seeds the collection directly, bypassing the server. Mainly useful
// for tests and offline bootstrapping.
func (col *Collection) Load(photos []Photo) {
	col.mu.Lock()
	defer col.mu.Unlock()
	col.photos = make(map[string]*Photo, len(photos))
	col.order = col.order[:0]
	for i := range photos {
		p := photos[i]
		col.photos[p.ID] = &p
		col.order = append(col.order, p.ID)
	}
}

// Photo returns a copy of the photo with the given id.
func (col *Collection) Photo(id string) (Photo, bool) {
	col.mu.Lock()
	defer col.mu.Unlock()
	p, ok := col.photos[id]
	if !ok {
		return Photo{}, false
	}
	return clonePhoto(p), true
}

// Photos returns copies of all photos in load order. Ids removed by
// DeletePhotos are skipped.
func (col *Collection) Photos() []Photo {
	col.mu.Lock()
	defer col.mu.Unlock()
	out := make([]Photo, 0, len(col.order))
	for _, id := range col.order {
		if p, ok := col.photos[id]; ok {
			out = append(out, clonePhoto(p))
		}
	}
	return out
}

// SetRating speculatively applies the new rating, then reconciles with the
// server's canonical value or rolls back to the prior rating on failure.
func (col *Collection) SetRating(photoID string, rating int) error {
	col.mu.Lock()
	p, ok := col.photos[photoID]
	if !ok {
		col.mu.Unlock()
		return fmt.Errorf("photo %s not in collection", photoID)
	}
	prior := p.Rating
	p.Rating = rating
	col.mu.Unlock()

	var resp Response[RatedPhoto]
	err := col.client.Put(fmt.Sprintf("/photos/%s/rating", photoID), map[string]int{"rating": rating}, &resp)

	col.mu.Lock()
	defer col.mu.Unlock()
	p, ok = col.photos[photoID]
	if !ok {
		return err
	}
	if err != nil {
		p.Rating = prior
		return err
	}
	p.Rating = resp.Data.Rating
	return nil
}

// ToggleLike flips the like status speculatively. The server derives the
// canonical status by majority vote over the photo's like rows, so the
// reconciled value is taken from the response rather than assumed to be
// the simple negation.
func (col *Collection) ToggleLike(photoID string) error {
	col.mu.Lock()
	p, ok := col.photos[photoID]
	if !ok {
		col.mu.Unlock()
		return fmt.Errorf("photo %s not in collection", photoID)
	}
	prior := p.IsLiked
	speculative := !prior
	p.IsLiked = speculative
	col.mu.Unlock()

	var resp Response[LikeResult]
	err := col.client.Post(fmt.Sprintf("/photos/%s/like", photoID), map[string]bool{"isLiked": speculative}, &resp)

	col.mu.Lock()
	defer col.mu.Unlock()
	p, ok = col.photos[photoID]
	if !ok {
		return err
	}
	if err != nil {
		p.IsLiked = prior
		return err
	}
	p.IsLiked = resp.Data.IsLiked
	return nil
}

// AddComment inserts a placeholder comment with a temporary id, then either
// replaces it with the server-assigned comment or removes it on failure.
// The returned comment is the canonical one.
func (col *Collection) AddComment(photoID, author, text string) (Comment, error) {
	tempID := tempIDPrefix + uuid.New().String()
	placeholder := Comment{
		ID:         tempID,
		PhotoID:    photoID,
		AuthorName: author,
		Text:       text,
		CreatedAt:  time.Now(),
	}

	col.mu.Lock()
	p, ok := col.photos[photoID]
	if !ok {
		col.mu.Unlock()
		return Comment{}, fmt.Errorf("photo %s not in collection", photoID)
	}
	p.Comments = append(p.Comments, placeholder)
	col.mu.Unlock()

	var resp Response[Comment]
	err := col.client.Post(fmt.Sprintf("/photos/%s/comments", photoID), map[string]string{
		"authorName": author,
		"text":       text,
	}, &resp)

	col.mu.Lock()
	defer col.mu.Unlock()
	p, ok = col.photos[photoID]
	if !ok {
		return Comment{}, err
	}
	if err != nil {
		p.Comments = removeComment(p.Comments, tempID)
		return Comment{}, err
	}
	replaceComment(p.Comments, tempID, resp.Data)
	return resp.Data, nil
}

// IsPending reports whether a comment id is a client-side placeholder that
// has not yet been confirmed by the server.
func IsPending(commentID string) bool {
	return strings.HasPrefix(commentID, tempIDPrefix)
}

// SetRatings applies a rating across multiple photos speculatively, then
// reconciles each photo with the server's per-item results: ids absent from
// the response no longer exist server-side and are dropped from the
// collection; everything else takes the canonical rating. The whole call
// rolls back on transport failure or a rejected rating.
func (col *Collection) SetRatings(photoIDs []string, rating int) error {
	col.mu.Lock()
	priors := make(map[string]int, len(photoIDs))
	for _, id := range photoIDs {
		if p, ok := col.photos[id]; ok {
			priors[id] = p.Rating
			p.Rating = rating
		}
	}
	col.mu.Unlock()

	var resp BatchRatingResponse
	err := col.client.Post("/photos/batch/rating", map[string]interface{}{
		"photoIDs": photoIDs,
		"rating":   rating,
	}, &resp)

	col.mu.Lock()
	defer col.mu.Unlock()
	if err != nil {
		for id, prior := range priors {
			if p, ok := col.photos[id]; ok {
				p.Rating = prior
			}
		}
		return err
	}

	confirmed := make(map[string]int, len(resp.Photos))
	for _, rp := range resp.Photos {
		confirmed[rp.ID] = rp.Rating
	}
	for id := range priors {
		canonical, ok := confirmed[id]
		if !ok {
			delete(col.photos, id)
			continue
		}
		if p, present := col.photos[id]; present {
			p.Rating = canonical
		}
	}
	return nil
}

// DeletePhotos removes the photos speculatively, then restores any the
// server reported a per-item failure for. Ids the server counts as deleted
// (including already-missing ones) stay removed.
func (col *Collection) DeletePhotos(photoIDs []string) (*BatchDeleteResponse, error) {
	col.mu.Lock()
	removed := make(map[string]*Photo, len(photoIDs))
	for _, id := range photoIDs {
		if p, ok := col.photos[id]; ok {
			removed[id] = p
			delete(col.photos, id)
		}
	}
	col.mu.Unlock()

	var resp BatchDeleteResponse
	err := col.client.Delete("/photos/batch", map[string]interface{}{"photoIDs": photoIDs}, &resp)

	col.mu.Lock()
	defer col.mu.Unlock()
	if err != nil {
		for id, p := range removed {
			col.photos[id] = p
		}
		return nil, err
	}
	for _, failure := range resp.Errors {
		if p, ok := removed[failure.PhotoID]; ok {
			col.photos[failure.PhotoID] = p
		}
	}
	return &resp, nil
}

func clonePhoto(p *Photo) Photo {
	out := *p
	out.Comments = append([]Comment(nil), p.Comments...)
	return out
}

func removeComment(comments []Comment, id string) []Comment {
	out := comments[:0]
	for _, cm := range comments {
		if cm.ID != id {
			out = append(out, cm)
		}
	}
	return out
}

func replaceComment(comments []Comment, id string, canonical Comment) {
	for i := range comments {
		if comments[i].ID == id {
			comments[i] = canonical
			return
		}
	}
}
