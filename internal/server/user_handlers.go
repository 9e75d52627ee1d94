package server

import (
	"murmur/internal/models"
	"murmur/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/users
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Name          string `json:"name"`
		Email         string `json:"email"`
		Password      string `json:"password"`
		PictureURL    string `json:"picture_url"`
		IsGoogle      bool   `json:"is_google"`
		StayConnected bool   `json:"stay_connected"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		PictureURL: req.PictureURL,
		IsGoogle:   req.IsGoogle,
	})
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.generateToken(user, req.StayConnected)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// GetUsers handles GET /api/users
func (s *Server) GetUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 50)
	users, err := s.userService.ListUsers(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetUser handles GET /api/users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := requireParam(c, "id", "user ID")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUser(c.UserContext(), models.UserID(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateUser handles PUT /api/users/:id
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := requireParam(c, "id", "user ID")
	if err != nil {
		return nil
	}
	if models.UserID(id) != currentUserID(c) {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Token does not match the requested account"))
	}

	var req struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		CurrentPassword string `json:"current_password"`
		PictureURL      string `json:"picture_url"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Update(c.UserContext(), service.UpdateUserInput{
		UserID:          models.UserID(id),
		Name:            req.Name,
		Email:           req.Email,
		NewPassword:     req.Password,
		CurrentPassword: req.CurrentPassword,
		PictureURL:      req.PictureURL,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// DeleteUser handles DELETE /api/users/:email. The token subject's email
// must match the path parameter; the account's posts and all traces of it
// in other posts go with it.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	email, err := requireParam(c, "email", "email")
	if err != nil {
		return nil
	}

	if err := s.userService.Delete(c.UserContext(), currentUserID(c), email); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "User deleted",
	})
}

// GetMyStats handles GET /api/users/me/stats
func (s *Server) GetMyStats(c *fiber.Ctx) error {
	stats, err := s.userService.MyStats(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
