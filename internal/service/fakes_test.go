package service

import (
	"context"
	"errors"
	"sync"

	"murmur/internal/models"
)

// memUserRepo is an in-memory UserRepository for service tests.
type memUserRepo struct {
	mu    sync.Mutex
	users map[models.UserID]*models.User
	order []models.UserID
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[models.UserID]*models.User{}}
}

func (r *memUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return models.NewConflictError("Email is already registered")
		}
	}
	copied := *user
	r.users[user.ID] = &copied
	r.order = append(r.order, user.ID)
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id models.UserID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetByIDs(ctx context.Context, ids []models.UserID) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.User{}
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (r *memUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return models.NewNotFoundError("User", user.ID)
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) UpdateFields(ctx context.Context, id models.UserID, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return models.NewNotFoundError("User", id)
	}
	for key, value := range fields {
		str, _ := value.(string)
		switch key {
		case "name":
			user.Name = str
		case "email":
			user.Email = str
		case "picture_url":
			user.PictureURL = str
		case "password":
			user.Password = str
		case "google_password":
			user.GooglePassword = str
		default:
			return errors.New("unexpected field " + key)
		}
	}
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id models.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return models.NewNotFoundError("User", id)
	}
	delete(r.users, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memUserRepo) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.User{}
	for _, id := range r.order {
		if user, ok := r.users[id]; ok {
			out = append(out, *user)
		}
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *memUserRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

// memPostRepo is an in-memory PostRepository for service tests.
type memPostRepo struct {
	mu    sync.Mutex
	posts map[models.PostID]*models.Post
	order []models.PostID
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: map[models.PostID]*models.Post{}}
}

func clonePost(p *models.Post) *models.Post {
	copied := *p
	copied.Likers = append(p.Likers[:0:0], p.Likers...)
	copied.Responses = append(p.Responses[:0:0], p.Responses...)
	for i := range copied.Responses {
		copied.Responses[i].Likers = append(
			p.Responses[i].Likers[:0:0], p.Responses[i].Likers...)
	}
	return &copied
}

func (r *memPostRepo) Create(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[post.ID] = clonePost(post)
	r.order = append(r.order, post.ID)
	return nil
}

func (r *memPostRepo) GetByID(ctx context.Context, id models.PostID) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, models.NewNotFoundError("Post", id)
	}
	return clonePost(post), nil
}

func (r *memPostRepo) List(ctx context.Context) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Post{}
	for _, id := range r.order {
		if post, ok := r.posts[id]; ok {
			out = append(out, clonePost(post))
		}
	}
	return out, nil
}

func (r *memPostRepo) GetByOwner(ctx context.Context, ownerID models.UserID) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Post{}
	for _, id := range r.order {
		if post, ok := r.posts[id]; ok && post.OwnerID == ownerID {
			out = append(out, clonePost(post))
		}
	}
	return out, nil
}

func (r *memPostRepo) Update(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[post.ID]; !ok {
		return models.NewNotFoundError("Post", post.ID)
	}
	r.posts[post.ID] = clonePost(post)
	return nil
}

func (r *memPostRepo) Delete(ctx context.Context, id models.PostID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return models.NewNotFoundError("Post", id)
	}
	delete(r.posts, id)
	return nil
}

func (r *memPostRepo) DeleteByOwner(ctx context.Context, ownerID models.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, post := range r.posts {
		if post.OwnerID == ownerID {
			delete(r.posts, id)
		}
	}
	return nil
}

func (r *memPostRepo) withPost(id models.PostID, fn func(*models.Post) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return models.NewNotFoundError("Post", id)
	}
	return fn(post)
}

func (r *memPostRepo) AddLiker(ctx context.Context, id models.PostID, userID models.UserID) error {
	return r.withPost(id, func(post *models.Post) error {
		post.Likers = append(post.Likers, userID)
		return nil
	})
}

func (r *memPostRepo) RemoveLiker(ctx context.Context, id models.PostID, userID models.UserID) error {
	return r.withPost(id, func(post *models.Post) error {
		post.Likers = removeFakeID(post.Likers, userID)
		return nil
	})
}

func (r *memPostRepo) AppendResponse(ctx context.Context, id models.PostID, response models.Response) error {
	return r.withPost(id, func(post *models.Post) error {
		post.Responses = append(post.Responses, response)
		return nil
	})
}

func (r *memPostRepo) UpdateResponseText(ctx context.Context, id models.PostID, responseID models.ResponseID, text string) error {
	return r.withPost(id, func(post *models.Post) error {
		resp := post.FindResponse(responseID)
		if resp == nil {
			return models.NewNotFoundError("Response", responseID)
		}
		resp.Text = text
		resp.WasEdited = true
		return nil
	})
}

func (r *memPostRepo) RemoveResponse(ctx context.Context, id models.PostID, responseID models.ResponseID) error {
	return r.withPost(id, func(post *models.Post) error {
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

func (r *memPostRepo) AddResponseLiker(ctx context.Context, id models.PostID, responseID models.ResponseID, userID models.UserID) error {
	return r.withPost(id, func(post *models.Post) error {
		resp := post.FindResponse(responseID)
		if resp == nil {
			return models.NewNotFoundError("Response", responseID)
		}
		resp.Likers = append(resp.Likers, userID)
		return nil
	})
}

func (r *memPostRepo) RemoveResponseLiker(ctx context.Context, id models.PostID, responseID models.ResponseID, userID models.UserID) error {
	return r.withPost(id, func(post *models.Post) error {
		resp := post.FindResponse(responseID)
		if resp == nil {
			return models.NewNotFoundError("Response", responseID)
		}
		resp.Likers = removeFakeID(resp.Likers, userID)
		return nil
	})
}

func (r *memPostRepo) RemoveUserTraces(ctx context.Context, userID models.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, post := range r.posts {
		post.Likers = removeFakeID(post.Likers, userID)
		kept := post.Responses[:0:0]
		for _, resp := range post.Responses {
			if resp.UserID == userID {
				continue
			}
			resp.Likers = removeFakeID(resp.Likers, userID)
			kept = append(kept, resp)
		}
		post.Responses = kept
	}
	return nil
}

func (r *memPostRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.posts)), nil
}

func removeFakeID(ids []models.UserID, target models.UserID) []models.UserID {
	kept := ids[:0:0]
	for _, id := range ids {
		if id != target {
			kept = append(kept, id)
		}
	}
	return kept
}

// okAssetChecker accepts every URL and records what it was asked to probe.
type okAssetChecker struct {
	checked []string
}

func (c *okAssetChecker) Check(ctx context.Context, rawURL string) error {
	c.checked = append(c.checked, rawURL)
	return nil
}

// failAssetChecker rejects every URL.
type failAssetChecker struct{}

func (c *failAssetChecker) Check(ctx context.Context, rawURL string) error {
	return errors.New("URL is not reachable")
}

// appCode extracts the AppError code, or "" for plain errors.
func appCode(err error) string {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
