// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"socialconnect/internal/models"
	"socialconnect/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	tokenIssuer   = "socialconnect-api"
	tokenAudience = "socialconnect-client"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parsePage extracts page/page_size query parameters, clamped to valid bounds.
func parsePage(c *fiber.Ctx) service.Page {
	return service.NormalizePage(
		c.QueryInt("page", 1),
		c.QueryInt("page_size", service.DefaultPageSize),
	)
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID", "commentId" -> "comment ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		prefix := param[:len(param)-2]
		words := splitCamel(prefix)
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// currentUserID returns the authenticated user's ID set by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	return c.Locals("userID").(uint)
}

// viewer builds the visibility viewer for the authenticated request.
func (s *Server) viewer(c *fiber.Ctx) service.Viewer {
	userID := currentUserID(c)
	return service.Viewer{
		ID:            userID,
		IsStaff:       s.isAdminByUserID(c.Context(), userID),
		Authenticated: true,
	}
}

// optionalViewer builds a viewer from an optional Authorization header.
// Unauthenticated requests get the anonymous viewer.
func (s *Server) optionalViewer(c *fiber.Ctx) service.Viewer {
	userID, ok := s.optionalUserID(c)
	if !ok {
		return service.Anonymous
	}
	return service.Viewer{
		ID:            userID,
		IsStaff:       s.isAdminByUserID(c.Context(), userID),
		Authenticated: true,
	}
}

// isAdminByUserID reports whether the given user is staff. Lookup failures
// count as not staff.
func (s *Server) isAdminByUserID(ctx context.Context, userID uint) bool {
	if s.db == nil {
		return false
	}
	var user models.User
	if err := s.db.WithContext(ctx).Select("is_staff").First(&user, userID).Error; err != nil {
		return false
	}
	return user.IsStaff
}
