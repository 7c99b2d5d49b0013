package server

import (
	"mingle/internal/service"

	"github.com/gofiber/fiber/v2"
)

// MostActiveByTopic handles GET /api/topics/:topic/most-active
func (s *Server) MostActiveByTopic(c *fiber.Ctx) error {
	post, err := s.postService.MostActive(c.Context(), c.Params("topic"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(post)
}

// ExpiredByTopic handles GET /api/topics/:topic/expired?limit=&skip=
func (s *Server) ExpiredByTopic(c *fiber.Ctx) error {
	limit := parseHistoryLimit(c, service.DefaultHistoryLimit)
	skip := c.QueryInt("skip", 0)

	posts, err := s.postService.ExpiredHistory(c.Context(), c.Params("topic"), limit, skip)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(posts)
}
