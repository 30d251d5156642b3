package server

import (
	"time"

	"socialconnect/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AdminGetUsers handles GET /api/admin/users: the non-staff user roster.
func (s *Server) AdminGetUsers(c *fiber.Ctx) error {
	page := parsePage(c)
	users, err := s.userRepo.ListNonStaff(c.Context(), page.Size, page.Offset())
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	total, err := s.userRepo.CountAll(c.Context())
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{
		"users":     users,
		"total":     total,
		"page":      page.Number,
		"page_size": page.Size,
	})
}

// AdminActivateUser handles POST /api/admin/users/:id/activate
func (s *Server) AdminActivateUser(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if serr := s.userRepo.SetActive(c.Context(), userID, true); serr != nil {
		return models.RespondWithError(c, models.StatusForError(serr), serr)
	}
	return c.JSON(fiber.Map{"is_active": true})
}

// AdminDeactivateUser handles POST /api/admin/users/:id/deactivate
func (s *Server) AdminDeactivateUser(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if serr := s.userRepo.SetActive(c.Context(), userID, false); serr != nil {
		return models.RespondWithError(c, models.StatusForError(serr), serr)
	}
	return c.JSON(fiber.Map{"is_active": false})
}

// AdminGetPosts handles GET /api/admin/posts, soft-deleted posts included.
func (s *Server) AdminGetPosts(c *fiber.Ctx) error {
	page := parsePage(c)
	posts, err := s.postRepo.ListAll(c.Context(), page.Size, page.Offset())
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{
		"posts":     posts,
		"page":      page.Number,
		"page_size": page.Size,
	})
}

// AdminDeletePost handles DELETE /api/admin/posts/:id: a hard delete that
// also removes the post's likes and comments.
func (s *Server) AdminDeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if serr := s.postRepo.HardDelete(c.Context(), postID); serr != nil {
		return models.RespondWithError(c, models.StatusForError(serr), serr)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AdminGetStats handles GET /api/admin/stats
func (s *Server) AdminGetStats(c *fiber.Ctx) error {
	ctx := c.Context()

	totalUsers, err := s.userRepo.CountAll(ctx)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	totalPosts, err := s.postRepo.CountAll(ctx)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	activeToday, err := s.userRepo.CountActiveSince(ctx, midnight)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{
		"total_users":        totalUsers,
		"total_posts":        totalPosts,
		"active_users_today": activeToday,
	})
}
