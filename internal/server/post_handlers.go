package server

import (
	"mingle/internal/models"
	"mingle/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req models.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	// Edge validation enforces the storage invariants; the service
	// applies the stricter creation policy on top.
	if err := s.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		Owner:            identityFromLocals(c),
		Title:            req.Title,
		Topics:           req.Topics,
		Body:             req.Body,
		ExpiresAt:        req.ExpiresAt,
		ExpiresInMinutes: req.ExpiresInMinutes,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// ListPosts handles GET /api/posts?topic=&status=&limit=&skip=
func (s *Server) ListPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	posts, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		Topic:  c.Query("topic"),
		Status: c.Query("status"),
		Limit:  page.Limit,
		Skip:   page.Skip,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(post)
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	counts, err := s.postService.Like(c.Context(), identityFromLocals(c).UserID, id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(counts)
}

// DislikePost handles POST /api/posts/:id/dislike
func (s *Server) DislikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	counts, err := s.postService.Dislike(c.Context(), identityFromLocals(c).UserID, id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(counts)
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req models.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	if err := s.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	comment, count, err := s.postService.Comment(c.Context(), identityFromLocals(c), id, req.Text)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"comment":       comment,
		"commentsCount": count,
	})
}
