// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// PostID identifies a post.
type PostID string

// ResponseID identifies a response within a post.
type ResponseID string

// Response is a threaded reply embedded in a post's document. Responses are
// independently likeable and editable by their author only.
type Response struct {
	ID        ResponseID `json:"id"`
	UserID    UserID     `json:"user_id"`
	Text      string     `json:"text"`
	Likers    []UserID   `json:"likers"`
	WasEdited bool       `json:"was_edited"`
	CreatedAt time.Time  `json:"created_at"`

	// AuthorName and AuthorAvatar are denormalized onto feed reads from a
	// batch user lookup; never persisted.
	AuthorName   string `json:"author_name,omitempty"`
	AuthorAvatar string `json:"author_avatar,omitempty"`
}

// HasLiker reports whether the given user appears in the response like-set.
func (r *Response) HasLiker(id UserID) bool {
	for _, l := range r.Likers {
		if l == id {
			return true
		}
	}
	return false
}

// Post represents a post in the Murmur application. It keeps the original
// document shape: the like-set and the response list live inside the post
// row as JSON columns, so every mutation touches exactly one row.
type Post struct {
	ID       PostID `gorm:"primaryKey;size:36" json:"id"`
	OwnerID  UserID `gorm:"index;not null;size:36" json:"owner_id"`
	Title    string `gorm:"not null" json:"title"`
	Text     string `gorm:"type:text;not null" json:"text"`
	ImageURL string `json:"image_url"`
	// VideoID is an 11-character YouTube video id, normalized at write time.
	VideoID   string `json:"video_id"`
	WasEdited bool   `json:"was_edited"`

	// Likers is semantically a set; historic rows may contain duplicates,
	// which are removed on every read.
	Likers    datatypes.JSONSlice[UserID]   `json:"likers"`
	Responses datatypes.JSONSlice[Response] `json:"responses"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// OwnerName and OwnerAvatar are denormalized onto feed reads; never persisted.
	OwnerName   string `gorm:"-" json:"owner_name,omitempty"`
	OwnerAvatar string `gorm:"-" json:"owner_avatar,omitempty"`
}

// HasLiker reports whether the given user appears in the post like-set.
func (p *Post) HasLiker(id UserID) bool {
	for _, l := range p.Likers {
		if l == id {
			return true
		}
	}
	return false
}

// FindResponse returns the response with the given id, or nil.
func (p *Post) FindResponse(id ResponseID) *Response {
	for i := range p.Responses {
		if p.Responses[i].ID == id {
			return &p.Responses[i]
		}
	}
	return nil
}

// DedupeLikers removes duplicate entries from the post's like-set and from
// every response's like-set, preserving first-seen order. Output like-sets
// are sets regardless of what historic writes left in storage.
func (p *Post) DedupeLikers() {
	p.Likers = dedupeIDs(p.Likers)
	for i := range p.Responses {
		p.Responses[i].Likers = dedupeIDs(p.Responses[i].Likers)
	}
}

// LikeCount returns the number of distinct likers on the post.
func (p *Post) LikeCount() int {
	return len(dedupeIDs(p.Likers))
}

func dedupeIDs(ids []UserID) []UserID {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[UserID]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
