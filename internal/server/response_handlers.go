package server

import (
	"murmur/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateResponse handles POST /api/posts/:id/responses
func (s *Server) CreateResponse(c *fiber.Ctx) error {
	id, err := requireParam(c, "id", "post ID")
	if err != nil {
		return nil
	}

	var req struct {
		Text string `json:"text"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	response, err := s.postService.AddResponse(c.UserContext(), models.PostID(id), currentUserID(c), req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(response)
}

// UpdateResponse handles PUT /api/posts/:id/responses/:responseId (author only)
func (s *Server) UpdateResponse(c *fiber.Ctx) error {
	id, err := requireParam(c, "id", "post ID")
	if err != nil {
		return nil
	}
	responseID, err := requireParam(c, "responseId", "response ID")
	if err != nil {
		return nil
	}

	var req struct {
		Text string `json:"text"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.postService.UpdateResponse(c.UserContext(), models.PostID(id),
		models.ResponseID(responseID), currentUserID(c), req.Text); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Response updated",
	})
}

// DeleteResponse handles DELETE /api/posts/:id/responses/:responseId (author only)
func (s *Server) DeleteResponse(c *fiber.Ctx) error {
	id, err := requireParam(c, "id", "post ID")
	if err != nil {
		return nil
	}
	responseID, err := requireParam(c, "responseId", "response ID")
	if err != nil {
		return nil
	}

	if err := s.postService.DeleteResponse(c.UserContext(), models.PostID(id),
		models.ResponseID(responseID), currentUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Response deleted",
	})
}

// ToggleResponseLike handles POST /api/posts/:id/responses/:responseId/like
func (s *Server) ToggleResponseLike(c *fiber.Ctx) error {
	id, err := requireParam(c, "id", "post ID")
	if err != nil {
		return nil
	}
	responseID, err := requireParam(c, "responseId", "response ID")
	if err != nil {
		return nil
	}

	liked, err := s.postService.ToggleResponseLike(c.UserContext(), models.PostID(id),
		models.ResponseID(responseID), currentUserID(c))
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
