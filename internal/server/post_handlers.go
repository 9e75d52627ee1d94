package server

import (
	"murmur/internal/models"
	"murmur/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title    string `json:"title"`
		Text     string `json:"text"`
		ImageURL string `json:"image_url"`
		VideoURL string `json:"video_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Create(c.UserContext(), service.CreatePostInput{
		OwnerID:  currentUserID(c),
		Title:    req.Title,
		Text:     req.Text,
		ImageURL: req.ImageURL,
		VideoRef: req.VideoURL,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts, the denormalized feed.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.Feed(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := requireParam(c, "id", "post ID")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), models.PostID(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id. Title and text apply only when
// present in the body; image and video are always overwritten, so omitting
// them clears the fields.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := requireParam(c, "id", "post ID")
	if err != nil {
		return nil
	}

	var req struct {
		Title    *string `json:"title"`
		Text     *string `json:"text"`
		ImageURL string  `json:"image_url"`
		VideoURL string  `json:"video_url"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Update(c.UserContext(), service.UpdatePostInput{
		PostID:   models.PostID(id),
		CallerID: currentUserID(c),
		Title:    req.Title,
		Text:     req.Text,
		ImageURL: req.ImageURL,
		VideoRef: req.VideoURL,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id (owner only)
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := requireParam(c, "id", "post ID")
	if err != nil {
		return nil
	}

	if err := s.postService.Delete(c.UserContext(), models.PostID(id), currentUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Post deleted",
	})
}

// DeleteAllPosts handles DELETE /api/posts, removing every post owned by
// the caller.
func (s *Server) DeleteAllPosts(c *fiber.Ctx) error {
	if err := s.postService.DeleteAll(c.UserContext(), currentUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Posts deleted",
	})
}

// ToggleLike handles POST /api/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := requireParam(c, "id", "post ID")
	if err != nil {
		return nil
	}

	liked, err := s.postService.ToggleLike(c.UserContext(), models.PostID(id), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	message := "Like removed"
	if liked {
		message = "Like added"
	}
	return c.JSON(fiber.Map{
		"message": message,
		"liked":   liked,
	})
}
