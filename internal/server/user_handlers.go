package server

import (
	"io"

	"socialconnect/internal/models"
	"socialconnect/internal/service"
	"socialconnect/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	view, err := s.userService.GetProfile(c.Context(), s.viewer(c), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(view)
}

// UpdateMyProfile handles PUT /api/users/me/profile
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req service.ProfileUpdate
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	profile, err := s.userService.UpdateProfile(c.Context(), currentUserID(c), req)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(profile)
}

// UploadAvatar handles POST /api/users/me/avatar with a multipart "avatar" file.
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("An 'avatar' file is required"))
	}
	if fileHeader.Size > validation.MaxImageBytes {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Avatar must be 2MB or smaller"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, validation.MaxImageBytes+1))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if int64(len(data)) > validation.MaxImageBytes {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Avatar must be 2MB or smaller"))
	}

	profile, err := s.userService.UploadAvatar(c.Context(), currentUserID(c), data)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(profile)
}

// GetUserProfile handles GET /api/users/:id with optional authentication.
// Hidden profiles answer 403; unknown users answer 404.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	view, err := s.userService.GetProfile(c.Context(), s.optionalViewer(c), userID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(view)
}

// GetProfileByUsername handles GET /api/users/by-username/:username
func (s *Server) GetProfileByUsername(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username is required"))
	}

	view, err := s.userService.GetProfileByUsername(c.Context(), s.optionalViewer(c), username)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(view)
}

// GetUsers handles GET /api/users, with no authentication required. Without
// parameters it lists the first 50 active users by username; ?username= is an
// exact lookup; ?q= returns up to 20 fuzzy username matches.
func (s *Server) GetUsers(c *fiber.Ctx) error {
	if username := c.Query("username"); username != "" {
		user, err := s.userService.FindByUsername(c.Context(), username)
		if err != nil {
			return models.RespondWithError(c, models.StatusForError(err), err)
		}
		return c.JSON(fiber.Map{"users": []*models.User{user}})
	}

	users, err := s.userService.ListUsers(c.Context(), c.Query("q"))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	authorID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	page := parsePage(c)
	posts, err := s.postService.ByAuthor(c.Context(), currentUserID(c), authorID, page)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{
		"posts":     posts,
		"page":      page.Number,
		"page_size": page.Size,
	})
}

// GetFollowSuggestions handles GET /api/users/suggestions with optional ?q=.
func (s *Server) GetFollowSuggestions(c *fiber.Ctx) error {
	page := parsePage(c)
	users, err := s.followService.Suggestions(c.Context(), currentUserID(c), c.Query("q"), page.Size)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"users": users})
}
