package server

import (
	"socialconnect/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, serr := s.engagementService.ListComments(c.Context(), postID)
	if serr != nil {
		return models.RespondWithError(c, models.StatusForError(serr), serr)
	}
	return c.JSON(fiber.Map{"comments": comments})
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if berr := c.BodyParser(&req); berr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, serr := s.engagementService.AddComment(c.Context(), currentUserID(c), postID, req.Content)
	if serr != nil {
		return models.RespondWithError(c, models.StatusForError(serr), serr)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id (soft delete).
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if serr := s.engagementService.RemoveComment(c.Context(), currentUserID(c), commentID); serr != nil {
		return models.RespondWithError(c, models.StatusForError(serr), serr)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
