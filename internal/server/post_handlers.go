package server

import (
	"io"

	"socialconnect/internal/models"
	"socialconnect/internal/service"
	"socialconnect/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed: the viewer's home timeline of posts by
// followed users plus their own, newest first.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page, err := s.feedService.Compose(c.Context(), currentUserID(c), parsePage(c))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(page)
}

// ExplorePosts handles GET /api/posts: the global timeline, with the liked
// flag annotated when the caller is authenticated.
func (s *Server) ExplorePosts(c *fiber.Ctx) error {
	viewerID, _ := s.optionalUserID(c)
	page, err := s.feedService.Explore(c.Context(), viewerID, parsePage(c))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(page)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	viewerID, _ := s.optionalUserID(c)
	post, err := s.postService.Get(c.Context(), viewerID, postID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts. Accepts JSON or multipart form with an
// optional "image" file.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	input, err := s.parsePostInput(c)
	if err != nil {
		return nil
	}

	post, serr := s.postService.Create(c.Context(), currentUserID(c), input)
	if serr != nil {
		return models.RespondWithError(c, models.StatusForError(serr), serr)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	input, err := s.parsePostInput(c)
	if err != nil {
		return nil
	}

	post, serr := s.postService.Update(c.Context(), currentUserID(c), postID, input)
	if serr != nil {
		return models.RespondWithError(c, models.StatusForError(serr), serr)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id (soft delete).
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if serr := s.postService.Delete(c.Context(), currentUserID(c), postID); serr != nil {
		return models.RespondWithError(c, models.StatusForError(serr), serr)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleLike handles POST /api/posts/:id/like. The same endpoint likes and
// unlikes; the response reports the resulting state.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, serr := s.engagementService.ToggleLike(c.Context(), currentUserID(c), postID)
	if serr != nil {
		return models.RespondWithError(c, models.StatusForError(serr), serr)
	}
	return c.JSON(result)
}

// GetLikeStatus handles GET /api/posts/:id/like
func (s *Server) GetLikeStatus(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	liked, serr := s.engagementService.IsLiked(c.Context(), currentUserID(c), postID)
	if serr != nil {
		return models.RespondWithError(c, models.StatusForError(serr), serr)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

// parsePostInput reads post fields from JSON or a multipart form. On failure
// it writes a 400 response and returns errResponseWritten.
func (s *Server) parsePostInput(c *fiber.Ctx) (service.PostInput, error) {
	var input service.PostInput

	fileHeader, ferr := c.FormFile("image")
	if ferr == nil {
		input.Content = c.FormValue("content")
		input.Category = c.FormValue("category")

		if fileHeader.Size > validation.MaxImageBytes {
			_ = models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Image must be 2MB or smaller"))
			return input, errResponseWritten
		}
		file, oerr := fileHeader.Open()
		if oerr != nil {
			_ = models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(oerr))
			return input, errResponseWritten
		}
		defer func() { _ = file.Close() }()

		data, rerr := io.ReadAll(io.LimitReader(file, validation.MaxImageBytes+1))
		if rerr != nil {
			_ = models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(rerr))
			return input, errResponseWritten
		}
		if int64(len(data)) > validation.MaxImageBytes {
			_ = models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Image must be 2MB or smaller"))
			return input, errResponseWritten
		}
		input.Image = data
		return input, nil
	}

	if err := c.BodyParser(&input); err != nil {
		// A multipart form without an image file still carries the text fields.
		input.Content = c.FormValue("content")
		input.Category = c.FormValue("category")
		if input.Content == "" {
			_ = models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
			return input, errResponseWritten
		}
	}
	return input, nil
}
