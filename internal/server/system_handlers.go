package server

import (
	"github.com/gofiber/fiber/v2"
)

// SystemStats handles GET /api/stats with store-side counts.
func (s *Server) SystemStats(c *fiber.Ctx) error {
	ctx := c.UserContext()

	userCount, err := s.userRepo.Count(ctx)
	if err != nil {
		return respondError(c, err)
	}
	postCount, err := s.postRepo.Count(ctx)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"users": userCount,
		"posts": postCount,
	})
}
