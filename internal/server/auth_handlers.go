package server

import (
	"murmur/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Login handles POST /api/login. An unknown email is reported as 404, a
// wrong password as 401.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email         string `json:"email"`
		Password      string `json:"password"`
		IsGoogle      bool   `json:"is_google"`
		StayConnected bool   `json:"stay_connected"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email and password are required"))
	}

	user, err := s.userService.Login(c.UserContext(), req.Email, req.Password, req.IsGoogle)
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.generateToken(user, req.StayConnected)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /api/logout. The presented token lands on the user's
// revoked list and is rejected from then on.
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.userService.Logout(c.UserContext(), currentUserID(c), currentToken(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}
