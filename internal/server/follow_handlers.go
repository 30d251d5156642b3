package server

import (
	"socialconnect/internal/models"

	"github.com/gofiber/fiber/v2"
)

// FollowUser handles POST /api/users/:id/follow. A new edge answers 201; an
// edge that already existed answers 200, so retries are harmless.
func (s *Server) FollowUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	created, serr := s.followService.Follow(c.Context(), currentUserID(c), targetID)
	if serr != nil {
		return models.RespondWithError(c, models.StatusForError(serr), serr)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"following": true})
}

// UnfollowUser handles DELETE /api/users/:id/follow
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if serr := s.followService.Unfollow(c.Context(), currentUserID(c), targetID); serr != nil {
		return models.RespondWithError(c, models.StatusForError(serr), serr)
	}
	return c.JSON(fiber.Map{"following": false})
}

// GetFollowers handles GET /api/users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	page := parsePage(c)
	users, serr := s.followService.Followers(c.Context(), userID, page.Size, page.Offset())
	if serr != nil {
		return models.RespondWithError(c, models.StatusForError(serr), serr)
	}
	return c.JSON(fiber.Map{
		"users":     users,
		"page":      page.Number,
		"page_size": page.Size,
	})
}

// GetFollowing handles GET /api/users/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	page := parsePage(c)
	users, serr := s.followService.Following(c.Context(), userID, page.Size, page.Offset())
	if serr != nil {
		return models.RespondWithError(c, models.StatusForError(serr), serr)
	}
	return c.JSON(fiber.Map{
		"users":     users,
		"page":      page.Number,
		"page_size": page.Size,
	})
}
