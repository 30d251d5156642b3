// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"fmt"
	"strconv"
	"time"

	"socialconnect/internal/models"
	"socialconnect/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username, email, and password are required"))
	}
	if err := validation.ValidateUsername(req.Username); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	existing, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if existing != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("User already exists"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(hashedPassword),
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	profile := &models.Profile{Visibility: models.VisibilityPublic}

	if createErr := s.userRepo.CreateWithProfile(c.Context(), user, profile); createErr != nil {
		return models.RespondWithError(c, models.StatusForError(createErr), createErr)
	}

	// Without a mail relay there is no way to deliver the verification link,
	// so accounts activate immediately.
	if s.mailer == nil {
		if aerr := s.userRepo.SetActive(c.Context(), user.ID, true); aerr != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, aerr)
		}
		user.IsActive = true
	} else {
		verifyToken, terr := s.generatePurposeToken(user.ID, purposeVerify, 24*time.Hour)
		if terr != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(terr))
		}
		verifyURL := fmt.Sprintf("%s/verify-email?token=%s", s.config.PublicBaseURL, verifyToken)
		if merr := s.mailer.SendVerification(c.Context(), user.Email, verifyURL); merr != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(merr))
		}

		// The account stays inactive until the emailed link is used, so
		// no access token is issued yet.
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Verification email sent",
			"user":    user,
		})
	}

	token, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// VerifyEmail handles POST /api/auth/verify-email
func (s *Server) VerifyEmail(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Token is required"))
	}

	userID, ok := s.parsePurposeToken(req.Token, purposeVerify)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid or expired verification token"))
	}

	if err := s.userRepo.SetActive(c.Context(), userID, true); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Email verified"})
}

// Login handles POST /api/auth/login. The identifier may be a username or an
// email address.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Identifier == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Identifier and password are required"))
	}

	user, err := s.userRepo.GetByUsername(c.Context(), req.Identifier)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil {
		user, err = s.userRepo.GetByEmail(c.Context(), req.Identifier)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); cmpErr != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	if !user.IsActive {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Account is not activated"))
	}

	if terr := s.userRepo.TouchLastLogin(c.Context(), user.ID); terr != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, terr)
	}

	token, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// RequestPasswordReset handles POST /api/auth/password-reset/request.
// The response never reveals whether the address is registered.
func (s *Server) RequestPasswordReset(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email is required"))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if user != nil && s.mailer != nil {
		resetToken, terr := s.generatePurposeToken(user.ID, purposeReset, time.Hour)
		if terr != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(terr))
		}
		resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.config.PublicBaseURL, resetToken)
		if merr := s.mailer.SendPasswordReset(c.Context(), user.Email, resetURL); merr != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(merr))
		}
	}

	return c.JSON(fiber.Map{
		"message": "If that address is registered, a reset link has been sent",
	})
}

// ConfirmPasswordReset handles POST /api/auth/password-reset/confirm
func (s *Server) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Token and new password are required"))
	}
	if err := validation.ValidatePassword(req.NewPassword); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	userID, ok := s.parsePurposeToken(req.Token, purposeReset)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid or expired reset token"))
	}

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	user.Password = string(hashedPassword)
	if uerr := s.userRepo.Update(c.Context(), user); uerr != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, uerr)
	}

	return c.JSON(fiber.Map{"message": "Password updated"})
}

// ChangePassword handles POST /api/auth/change-password for an authenticated user.
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidatePassword(req.NewPassword); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); cmpErr != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Current password is incorrect"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	user.Password = string(hashedPassword)
	if uerr := s.userRepo.Update(c.Context(), user); uerr != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, uerr)
	}

	return c.JSON(fiber.Map{"message": "Password updated"})
}

const (
	purposeVerify = "verify"
	purposeReset  = "reset"
)

// generateToken creates a JWT access token for the given user ID and username.
func (s *Server) generateToken(userID uint, username string) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      now.Add(time.Hour * 24 * 7).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      s.generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generatePurposeToken mints a single-purpose token (email verification or
// password reset). The purpose claim keeps it from being used as an access
// token.
func (s *Server) generatePurposeToken(userID uint, purpose string, ttl time.Duration) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     strconv.FormatUint(uint64(userID), 10),
		"iss":     tokenIssuer,
		"aud":     tokenAudience,
		"purpose": purpose,
		"exp":     now.Add(ttl).Unix(),
		"iat":     now.Unix(),
		"nbf":     now.Unix(),
		"jti":     s.generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// parsePurposeToken validates a single-purpose token and returns the user ID.
func (s *Server) parsePurposeToken(tokenString, wantPurpose string) (uint, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	if purpose, pok := claims["purpose"].(string); !pok || purpose != wantPurpose {
		return 0, false
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(userID), true
}

// generateJTI creates a unique JWT ID to prevent replay attacks.
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
