package server

import (
	"strconv"
	"time"

	"mingle/internal/models"
	"mingle/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Register(c.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// generateToken issues an HS256 JWT carrying the identity snapshot: the
// user ID in "sub" and the display name in "name".
func (s *Server) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(user.ID), 10),
		"name": user.Name,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(72 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
