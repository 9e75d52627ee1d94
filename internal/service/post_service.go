package service

import (
	"context"
	"sort"
	"time"

	"murmur/internal/models"
	"murmur/internal/repository"
	"murmur/internal/validation"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	assets   validation.AssetChecker
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository, assets validation.AssetChecker) *PostService {
	return &PostService{postRepo: postRepo, userRepo: userRepo, assets: assets}
}

type CreatePostInput struct {
	OwnerID  models.UserID
	Title    string
	Text     string
	ImageURL string
	VideoRef string
}

// UpdatePostInput carries a partial update. Title and Text are applied only
// when non-nil; ImageURL and VideoRef always overwrite, so omitting them
// clears the fields.
type UpdatePostInput struct {
	PostID   models.PostID
	CallerID models.UserID
	Title    *string
	Text     *string
	ImageURL string
	VideoRef string
}

func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if _, err := s.userRepo.GetByID(ctx, in.OwnerID); err != nil {
		return nil, err
	}
	if err := validation.ValidateTitle(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateText(in.Text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.ImageURL != "" {
		if err := s.assets.Check(ctx, in.ImageURL); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	videoID := ""
	if in.VideoRef != "" {
		normalized, err := validation.NormalizeVideoID(in.VideoRef)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		videoID = normalized
	}

	post := &models.Post{
		ID:       models.PostID(uuid.New().String()),
		OwnerID:  in.OwnerID,
		Title:    in.Title,
		Text:     in.Text,
		ImageURL: in.ImageURL,
		VideoID:  videoID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, id models.PostID) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	post.DedupeLikers()
	return post, nil
}

// Feed loads every post, dedupes like-sets, orders by collated title with a
// stable like-count re-sort on top, and denormalizes author names and
// avatars with a single batch user lookup.
func (s *PostService) Feed(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, post := range posts {
		post.DedupeLikers()
	}

	// Case and accent insensitive Portuguese ordering for titles, then a
	// stable re-sort so equal like counts keep the collated order.
	cl := collate.New(language.Portuguese, collate.Loose)
	sort.SliceStable(posts, func(i, j int) bool {
		return cl.CompareString(posts[i].Title, posts[j].Title) < 0
	})
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].LikeCount() > posts[j].LikeCount()
	})

	if err := s.denormalizeAuthors(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// denormalizeAuthors fills owner and responder display fields from one
// batch lookup covering every referenced user id.
func (s *PostService) denormalizeAuthors(ctx context.Context, posts []*models.Post) error {
	idSet := make(map[models.UserID]struct{})
	for _, post := range posts {
		idSet[post.OwnerID] = struct{}{}
		for i := range post.Responses {
			idSet[post.Responses[i].UserID] = struct{}{}
		}
	}
	if len(idSet) == 0 {
		return nil
	}

	ids := make([]models.UserID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[models.UserID]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	for _, post := range posts {
		if owner, ok := byID[post.OwnerID]; ok {
			post.OwnerName = owner.Name
			post.OwnerAvatar = owner.PictureURL
		}
		for i := range post.Responses {
			if author, ok := byID[post.Responses[i].UserID]; ok {
				post.Responses[i].AuthorName = author.Name
				post.Responses[i].AuthorAvatar = author.PictureURL
			}
		}
	}
	return nil
}

func (s *PostService) Update(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.OwnerID != in.CallerID {
		return nil, models.NewUnauthorizedError("Only the owner can update a post")
	}

	if in.Title != nil {
		if err := validation.ValidateTitle(*in.Title); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Title = *in.Title
	}
	if in.Text != nil {
		if err := validation.ValidateText(*in.Text); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Text = *in.Text
	}

	if in.ImageURL != "" {
		if err := s.assets.Check(ctx, in.ImageURL); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}
	post.ImageURL = in.ImageURL

	post.VideoID = ""
	if in.VideoRef != "" {
		normalized, err := validation.NormalizeVideoID(in.VideoRef)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.VideoID = normalized
	}

	post.WasEdited = true
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, id models.PostID, callerID models.UserID) error {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post.OwnerID != callerID {
		return models.NewUnauthorizedError("Only the owner can delete a post")
	}
	return s.postRepo.Delete(ctx, id)
}

// DeleteAll removes every post owned by the caller.
func (s *PostService) DeleteAll(ctx context.Context, callerID models.UserID) error {
	if _, err := s.userRepo.GetByID(ctx, callerID); err != nil {
		return err
	}
	return s.postRepo.DeleteByOwner(ctx, callerID)
}

// ToggleLike flips the caller's membership in the post's like-set and
// reports the resulting state.
func (s *PostService) ToggleLike(ctx context.Context, id models.PostID, callerID models.UserID) (bool, error) {
	if _, err := s.userRepo.GetByID(ctx, callerID); err != nil {
		return false, err
	}
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	if post.HasLiker(callerID) {
		return false, s.postRepo.RemoveLiker(ctx, id, callerID)
	}
	return true, s.postRepo.AddLiker(ctx, id, callerID)
}

func (s *PostService) AddResponse(ctx context.Context, postID models.PostID, authorID models.UserID, text string) (*models.Response, error) {
	if _, err := s.userRepo.GetByID(ctx, authorID); err != nil {
		return nil, err
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	if err := validation.ValidateText(text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	response := models.Response{
		ID:        models.ResponseID(uuid.New().String()),
		UserID:    authorID,
		Text:      text,
		Likers:    []models.UserID{},
		CreatedAt: time.Now(),
	}
	if err := s.postRepo.AppendResponse(ctx, postID, response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (s *PostService) UpdateResponse(ctx context.Context, postID models.PostID, responseID models.ResponseID, callerID models.UserID, text string) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	response := post.FindResponse(responseID)
	if response == nil {
		return models.NewNotFoundError("Response", responseID)
	}
	if response.UserID != callerID {
		return models.NewUnauthorizedError("Only the author can edit a response")
	}
	if err := validation.ValidateText(text); err != nil {
		return models.NewValidationError(err.Error())
	}
	return s.postRepo.UpdateResponseText(ctx, postID, responseID, text)
}

func (s *PostService) DeleteResponse(ctx context.Context, postID models.PostID, responseID models.ResponseID, callerID models.UserID) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	response := post.FindResponse(responseID)
	if response == nil {
		return models.NewNotFoundError("Response", responseID)
	}
	if response.UserID != callerID {
		return models.NewUnauthorizedError("Only the author can delete a response")
	}
	return s.postRepo.RemoveResponse(ctx, postID, responseID)
}

// ToggleResponseLike applies the same toggle rules as post likes to a
// single response.
func (s *PostService) ToggleResponseLike(ctx context.Context, postID models.PostID, responseID models.ResponseID, callerID models.UserID) (bool, error) {
	if _, err := s.userRepo.GetByID(ctx, callerID); err != nil {
		return false, err
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return false, err
	}
	response := post.FindResponse(responseID)
	if response == nil {
		return false, models.NewNotFoundError("Response", responseID)
	}

	if response.HasLiker(callerID) {
		return false, s.postRepo.RemoveResponseLiker(ctx, postID, responseID, callerID)
	}
	return true, s.postRepo.AddResponseLiker(ctx, postID, responseID, callerID)
}
