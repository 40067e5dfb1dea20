package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/phototree/backend/internal/middleware"
	"github.com/phototree/backend/internal/services"
	"github.com/phototree/backend/pkg/utils"
	"gorm.io/gorm"
)

type NotificationsHandler struct {
	Notify *services.NotifyService
}

func NewNotificationsHandler(notify *services.NotifyService) *NotificationsHandler {
	return &NotificationsHandler{Notify: notify}
}

func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	rows, err := h.Notify.Latest(c.Context(), currentUser.ID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing notifications")
	}
	return utils.Success(c, fiber.StatusOK, rows)
}

func (h *NotificationsHandler) UnreadCount(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	count, err := h.Notify.UnreadCount(c.Context(), currentUser.ID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed counting notifications")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"count": count})
}

func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	notificationID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid notification id")
	}

	if err := h.Notify.MarkRead(c.Context(), currentUser.ID, notificationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "notification not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed marking notification read")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "notification marked read"})
}

func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.Notify.MarkAllRead(c.Context(), currentUser.ID); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed marking notifications read")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "all notifications marked read"})
}
