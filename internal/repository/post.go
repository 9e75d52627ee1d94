// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"murmur/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations. The store's
// conditional push/pull operators are surfaced as explicit methods so the
// engine stays swappable and services can be tested against a fake.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id models.PostID) (*models.Post, error)
	// List returns every post; the feed's ordering and denormalization are
	// applied by the service on top of this.
	List(ctx context.Context) ([]*models.Post, error)
	GetByOwner(ctx context.Context, ownerID models.UserID) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id models.PostID) error
	DeleteByOwner(ctx context.Context, ownerID models.UserID) error

	AddLiker(ctx context.Context, id models.PostID, userID models.UserID) error
	RemoveLiker(ctx context.Context, id models.PostID, userID models.UserID) error

	AppendResponse(ctx context.Context, id models.PostID, response models.Response) error
	UpdateResponseText(ctx context.Context, id models.PostID, responseID models.ResponseID, text string) error
	RemoveResponse(ctx context.Context, id models.PostID, responseID models.ResponseID) error
	AddResponseLiker(ctx context.Context, id models.PostID, responseID models.ResponseID, userID models.UserID) error
	RemoveResponseLiker(ctx context.Context, id models.PostID, responseID models.ResponseID, userID models.UserID) error

	// RemoveUserTraces pulls the user out of every post: their responses,
	// their entries in post like-sets and their entries in response
	// like-sets. Each post is updated independently.
	RemoveUserTraces(ctx context.Context, userID models.UserID) error
	Count(ctx context.Context) (int64, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if post.Likers == nil {
		post.Likers = datatypes.JSONSlice[models.UserID]{}
	}
	if post.Responses == nil {
		post.Responses = datatypes.JSONSlice[models.Response]{}
	}
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id models.PostID) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).Order("created_at").Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) GetByOwner(ctx context.Context, ownerID models.UserID) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at").Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id models.PostID) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Post{})
	if tx.Error != nil {
		return models.NewInternalError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

func (r *postRepository) DeleteByOwner(ctx context.Context, ownerID models.UserID) error {
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&models.Post{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// mutate loads the post inside a transaction, applies fn and writes back the
// embedded columns. Every mutation touches exactly one row.
func (r *postRepository) mutate(ctx context.Context, id models.PostID, fn func(*models.Post) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Where("id = ?", id).First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", id)
			}
			return models.NewInternalError(err)
		}
		if err := fn(&post); err != nil {
			return err
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", id).Updates(map[string]interface{}{
			"likers":    post.Likers,
			"responses": post.Responses,
		}).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	return err
}

func (r *postRepository) AddLiker(ctx context.Context, id models.PostID, userID models.UserID) error {
	return r.mutate(ctx, id, func(post *models.Post) error {
		post.Likers = append(post.Likers, userID)
		return nil
	})
}

func (r *postRepository) RemoveLiker(ctx context.Context, id models.PostID, userID models.UserID) error {
	return r.mutate(ctx, id, func(post *models.Post) error {
		post.Likers = removeID(post.Likers, userID)
		return nil
	})
}

func (r *postRepository) AppendResponse(ctx context.Context, id models.PostID, response models.Response) error {
	return r.mutate(ctx, id, func(post *models.Post) error {
		post.Responses = append(post.Responses, response)
		return nil
	})
}

func (r *postRepository) UpdateResponseText(ctx context.Context, id models.PostID, responseID models.ResponseID, text string) error {
	return r.mutate(ctx, id, func(post *models.Post) error {
		resp := post.FindResponse(responseID)
		if resp == nil {
			return models.NewNotFoundError("Response", responseID)
		}
		resp.Text = text
		resp.WasEdited = true
		return nil
	})
}

func (r *postRepository) RemoveResponse(ctx context.Context, id models.PostID, responseID models.ResponseID) error {
	return r.mutate(ctx, id, func(post *models.Post) error {
		kept := post.Responses[:0:0]
		found := false
		for _, resp := range post.Responses {
			if resp.ID == responseID {
				found = true
				continue
			}
			kept = append(kept, resp)
		}
		if !found {
			return models.NewNotFoundError("Response", responseID)
		}
		post.Responses = kept
		return nil
	})
}

func (r *postRepository) AddResponseLiker(ctx context.Context, id models.PostID, responseID models.ResponseID, userID models.UserID) error {
	return r.mutate(ctx, id, func(post *models.Post) error {
		resp := post.FindResponse(responseID)
		if resp == nil {
			return models.NewNotFoundError("Response", responseID)
		}
		resp.Likers = append(resp.Likers, userID)
		return nil
	})
}

func (r *postRepository) RemoveResponseLiker(ctx context.Context, id models.PostID, responseID models.ResponseID, userID models.UserID) error {
	return r.mutate(ctx, id, func(post *models.Post) error {
		resp := post.FindResponse(responseID)
		if resp == nil {
			return models.NewNotFoundError("Response", responseID)
		}
		resp.Likers = removeID(resp.Likers, userID)
		return nil
	})
}

func (r *postRepository) RemoveUserTraces(ctx context.Context, userID models.UserID) error {
	// A sequence of independent single-row updates; a crash mid-way leaves
	// partial cleanup, matching the store's per-document atomicity model.
	posts, err := r.List(ctx)
	if err != nil {
		return err
	}
	for _, post := range posts {
		if !postReferencesUser(post, userID) {
			continue
		}
		if err := r.mutate(ctx, post.ID, func(p *models.Post) error {
			p.Likers = removeID(p.Likers, userID)
			kept := p.Responses[:0:0]
			for _, resp := range p.Responses {
				if resp.UserID == userID {
					continue
				}
				resp.Likers = removeID(resp.Likers, userID)
				kept = append(kept, resp)
			}
			p.Responses = kept
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func postReferencesUser(post *models.Post, userID models.UserID) bool {
	if post.HasLiker(userID) {
		return true
	}
	for i := range post.Responses {
		if post.Responses[i].UserID == userID || post.Responses[i].HasLiker(userID) {
			return true
		}
	}
	return false
}

func removeID(ids []models.UserID, target models.UserID) []models.UserID {
	kept := ids[:0:0]
	for _, id := range ids {
		if id != target {
			kept = append(kept, id)
		}
	}
	return kept
}
