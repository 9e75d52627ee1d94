// Package service contains the business logic between handlers and repositories.
package service

import (
	"context"
	"time"

	"murmur/internal/models"
	"murmur/internal/repository"
	"murmur/internal/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// revokedTokenTTL bounds how long a logged-out token stays on the user's
// revoked list before it is pruned.
const revokedTokenTTL = 7 * 24 * time.Hour

type UserService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
	assets   validation.AssetChecker
}

func NewUserService(userRepo repository.UserRepository, postRepo repository.PostRepository, assets validation.AssetChecker) *UserService {
	return &UserService{userRepo: userRepo, postRepo: postRepo, assets: assets}
}

type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	PictureURL string
	IsGoogle   bool
}

type UpdateUserInput struct {
	UserID          models.UserID
	Name            string
	Email           string
	NewPassword     string
	CurrentPassword string
	PictureURL      string
}

// UserStats aggregates engagement over a user's posts, recomputed per
// request from the posts themselves.
type UserStats struct {
	Posts      int `json:"posts"`
	Likes      int `json:"likes"`
	Responses  int `json:"responses"`
	WithImage  int `json:"with_image"`
	WithVideo  int `json:"with_video"`
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.PictureURL != "" {
		if err := s.assets.Check(ctx, in.PictureURL); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Email is already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		ID:         models.UserID(uuid.New().String()),
		Name:       in.Name,
		Email:      in.Email,
		PictureURL: in.PictureURL,
		IsGoogle:   in.IsGoogle,
	}
	if in.IsGoogle {
		user.GooglePassword = string(hashed)
		user.HasGooglePassword = true
	} else {
		user.Password = string(hashed)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates by email against the password slot matching the
// caller's declared provider. An unknown email is reported as not found,
// a wrong password as unauthorized.
func (s *UserService) Login(ctx context.Context, email, password string, isGoogle bool) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", email)
	}

	stored := user.Password
	if isGoogle && user.HasGooglePassword {
		stored = user.GooglePassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

// Logout records the presented token on the user's revoked list so later
// requests carrying it are rejected. Entries older than the TTL are pruned
// before appending.
func (s *UserService) Logout(ctx context.Context, userID models.UserID, token string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-revokedTokenTTL)
	kept := user.RevokedTokens[:0:0]
	for _, rt := range user.RevokedTokens {
		if rt.IssuedAt.After(cutoff) {
			kept = append(kept, rt)
		}
	}
	kept = append(kept, models.RevokedToken{
		ID:       uuid.New().String(),
		Token:    token,
		IssuedAt: time.Now(),
	})
	user.RevokedTokens = kept

	return s.userRepo.Update(ctx, user)
}

func (s *UserService) Update(ctx context.Context, in UpdateUserInput) (*models.User, error) {
	if in.Name == "" && in.Email == "" && in.NewPassword == "" {
		return nil, models.NewValidationError("At least one of name, email or password is required")
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}

	if in.Name != "" {
		if err := validation.ValidateName(in.Name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["name"] = in.Name
	}
	if in.Email != "" {
		if err := validation.ValidateEmail(in.Email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["email"] = in.Email
	}
	if in.PictureURL != "" {
		if err := s.assets.Check(ctx, in.PictureURL); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["picture_url"] = in.PictureURL
	}

	if in.NewPassword != "" {
		if err := validation.ValidatePassword(in.NewPassword); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		stored := user.Password
		if user.IsGoogle && user.HasGooglePassword {
			stored = user.GooglePassword
		}
		if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(in.CurrentPassword)); err != nil {
			return nil, models.NewUnauthorizedError("Current password does not match")
		}
		if in.NewPassword == in.CurrentPassword {
			return nil, models.NewValidationError("New password must differ from the current one")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		if user.IsGoogle && user.HasGooglePassword {
			fields["google_password"] = string(hashed)
		} else {
			fields["password"] = string(hashed)
		}
	}

	if err := s.userRepo.UpdateFields(ctx, in.UserID, fields); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, in.UserID)
}

// Delete removes the account whose email matches the path parameter. The
// caller must be that account. Cleanup runs as a sequence of independent
// updates: owned posts first, then the user's traces in everyone else's
// posts, then the user record.
func (s *UserService) Delete(ctx context.Context, callerID models.UserID, email string) error {
	caller, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return err
	}
	if caller.Email != email {
		return models.NewUnauthorizedError("Token does not match the requested account")
	}

	if err := s.postRepo.DeleteByOwner(ctx, caller.ID); err != nil {
		return err
	}
	if err := s.postRepo.RemoveUserTraces(ctx, caller.ID); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, caller.ID)
}

// GetUser returns the user with the read-time likes counter filled in.
func (s *UserService) GetUser(ctx context.Context, id models.UserID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.GetByOwner(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Likes = totalLikes(posts)
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	likesByOwner := make(map[models.UserID]int)
	for _, post := range posts {
		likesByOwner[post.OwnerID] += post.LikeCount()
	}
	for i := range users {
		users[i].Likes = likesByOwner[users[i].ID]
	}
	return users, nil
}

// MyStats scans the caller's posts and aggregates engagement. Nothing is
// persisted; counters are recomputed on every call.
func (s *UserService) MyStats(ctx context.Context, userID models.UserID) (*UserStats, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	posts, err := s.postRepo.GetByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &UserStats{Posts: len(posts)}
	for _, post := range posts {
		stats.Likes += post.LikeCount()
		stats.Responses += len(post.Responses)
		if post.ImageURL != "" {
			stats.WithImage++
		}
		if post.VideoID != "" {
			stats.WithVideo++
		}
	}
	return stats, nil
}

func totalLikes(posts []*models.Post) int {
	total := 0
	for _, post := range posts {
		total += post.LikeCount()
	}
	return total
}
