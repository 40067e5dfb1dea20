package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/phototree/backend/internal/middleware"
	"github.com/phototree/backend/internal/models"
	"github.com/phototree/backend/internal/services"
	"github.com/phototree/backend/pkg/logger"
	"github.com/phototree/backend/pkg/resettoken"
	"github.com/phototree/backend/pkg/utils"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB     *gorm.DB
	Mailer services.Mailer
}

func NewAuthHandler(db *gorm.DB, mailer services.Mailer) *AuthHandler {
	return &AuthHandler{DB: db, Mailer: mailer}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return utils.Error(c, fiber.StatusBadRequest, "name, email and password are required")
	}

	var existing int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&existing).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking email")
	}
	if existing > 0 {
		return utils.Error(c, fiber.StatusConflict, "email already registered")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed hashing password")
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.UserRoleUser,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating user")
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating token")
	}

	logger.InfoWithUser(user.ID.String(), "user_registered", map[string]interface{}{
		"email": user.Email,
	})

	return utils.Success(c, fiber.StatusCreated, fiber.Map{"token": token, "user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	var user models.User
	err := h.DB.First(&user, "email = ?", strings.ToLower(strings.TrimSpace(req.Email))).Error
	if err != nil || !utils.CheckPassword(req.Password, user.PasswordHash) {
		return utils.Error(c, fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating token")
	}

	logger.InfoWithUser(user.ID.String(), "user_login", nil)

	return utils.Success(c, fiber.StatusOK, fiber.Map{"token": token, "user": user})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return utils.Success(c, fiber.StatusOK, user)
}

type resetRequestBody struct {
	Email string `json:"email"`
}

// ResetRequest always answers 200 so account existence is not
// revealed; the token only ever leaves through the mail boundary.
func (h *AuthHandler) ResetRequest(c *fiber.Ctx) error {
	var req resetRequestBody
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return utils.Error(c, fiber.StatusBadRequest, "email is required")
	}

	var user models.User
	if err := h.DB.First(&user, "email = ?", email).Error; err == nil {
		token := resettoken.Generate(user.ID.String(), user.Email)
		if token != "" && h.Mailer != nil {
			if !h.Mailer.SendResetEmail(user.Email, token, user.Name) {
				logger.Warn("reset_email_send_failed", map[string]interface{}{
					"email": user.Email,
				})
			}
		}
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "if the account exists, a reset email was sent"})
}

type resetConfirmBody struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *AuthHandler) ResetConfirm(c *fiber.Ctx) error {
	var req resetConfirmBody
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Token == "" || req.Password == "" {
		return utils.Error(c, fiber.StatusBadRequest, "token and password are required")
	}

	tok, err := resettoken.Consume(req.Token)
	if err != nil {
		return utils.Error(c, fiber.StatusUnauthorized, "invalid or expired reset token")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed hashing password")
	}

	result := h.DB.Model(&models.User{}).Where("id = ?", tok.UserID).Update("password_hash", hash)
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating password")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusUnauthorized, "invalid or expired reset token")
	}

	logger.InfoWithUser(tok.UserID, "password_reset_completed", nil)

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "password updated"})
}
