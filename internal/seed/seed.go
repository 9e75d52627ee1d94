// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"murmur/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// SkipBcrypt stores the plain demo password instead of hashing it.
	// Much faster for large seeds; dev only.
	SkipBcrypt bool
}

// Seeder populates the database with generated users and posts.
type Seeder struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// demoPassword is shared by every seeded account.
const demoPassword = "password123"

var videoIDs = []string{"dQw4w9WgXcQ", "9bZkp7q19f0", "3JZ_D3ELwOQ", "L_jWHffIx5E", "kXYiU_JCYtU"}

func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:   db,
		opts: opts,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seeded rows. Posts first so the users they reference
// never dangle mid-clean.
func (s *Seeder) ClearAll() error {
	if err := s.db.Where("1 = 1").Delete(&models.Post{}).Error; err != nil {
		return fmt.Errorf("clearing posts: %w", err)
	}
	if err := s.db.Where("1 = 1").Delete(&models.User{}).Error; err != nil {
		return fmt.Errorf("clearing users: %w", err)
	}
	log.Println("Cleared existing data")
	return nil
}

// Run seeds users, then posts with likes and responses spread across them.
func (s *Seeder) Run() error {
	if s.opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users, err := s.SeedUsers(s.opts.NumUsers)
	if err != nil {
		return err
	}
	if _, err := s.SeedPosts(users, s.opts.NumPosts); err != nil {
		return err
	}
	return nil
}

// SeedUsers creates n demo accounts sharing the demo password.
func (s *Seeder) SeedUsers(n int) ([]*models.User, error) {
	password := demoPassword
	if !s.opts.SkipBcrypt {
		hashed, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		password = string(hashed)
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user := s.BuildUser(func(u *models.User) {
			u.Password = password
		})
		users = append(users, user)
	}
	if err := s.db.Create(&users).Error; err != nil {
		return nil, fmt.Errorf("seeding users: %w", err)
	}
	log.Printf("Seeded %d users (password: %s)", len(users), demoPassword)
	return users, nil
}

// BuildUser constructs a sample user without persisting it. Optional
// override functions may modify the generated user.
func (s *Seeder) BuildUser(overrides ...func(*models.User)) *models.User {
	user := &models.User{
		ID:         models.UserID(uuid.New().String()),
		Name:       gofakeit.Name(),
		Email:      gofakeit.Email(),
		PictureURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// SeedPosts creates n posts owned by random seeded users, with likes and
// responses sprinkled across the user pool.
func (s *Seeder) SeedPosts(users []*models.User, n int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to own posts")
	}

	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		owner := users[s.rng.Intn(len(users))]
		posts = append(posts, s.BuildPost(owner, users))
	}
	if err := s.db.Create(&posts).Error; err != nil {
		return nil, fmt.Errorf("seeding posts: %w", err)
	}
	log.Printf("Seeded %d posts", len(posts))
	return posts, nil
}

// BuildPost constructs a sample post for the given owner without persisting
// it, picking likers and responders from the user pool.
func (s *Seeder) BuildPost(owner *models.User, pool []*models.User) *models.Post {
	post := &models.Post{
		ID:      models.PostID(uuid.New().String()),
		OwnerID: owner.ID,
		Title:   gofakeit.Sentence(4),
		Text:    gofakeit.Paragraph(1, 3, 8, "\n"),
	}

	// realistic created_at spread over the last 90 days
	daysBack := s.rng.Intn(90)
	hoursBack := s.rng.Intn(24)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	switch s.rng.Intn(3) {
	case 0:
		post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
	case 1:
		post.VideoID = videoIDs[s.rng.Intn(len(videoIDs))]
	}

	post.Likers = datatypes.JSONSlice[models.UserID](s.pickUsers(pool, s.rng.Intn(6)))

	responses := datatypes.JSONSlice[models.Response]{}
	for i := 0; i < s.rng.Intn(4); i++ {
		author := pool[s.rng.Intn(len(pool))]
		responses = append(responses, models.Response{
			ID:        models.ResponseID(uuid.New().String()),
			UserID:    author.ID,
			Text:      gofakeit.Sentence(8),
			Likers:    s.pickUsers(pool, s.rng.Intn(3)),
			CreatedAt: post.CreatedAt.Add(time.Duration(i+1) * time.Hour),
		})
	}
	post.Responses = responses

	return post
}

// pickUsers selects up to n distinct user ids from the pool.
func (s *Seeder) pickUsers(pool []*models.User, n int) []models.UserID {
	ids := []models.UserID{}
	seen := map[models.UserID]struct{}{}
	for len(ids) < n && len(seen) < len(pool) {
		candidate := pool[s.rng.Intn(len(pool))].ID
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		ids = append(ids, candidate)
	}
	return ids
}
