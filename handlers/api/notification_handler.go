package api

import (
	"davetli.app/services"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler uygulama içi bildirim uçları.
type NotificationHandler struct {
	service services.INotificationService
}

// NewNotificationHandler yeni bir NotificationHandler örneği oluşturur.
func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{service: services.NewNotificationService()}
}

// List (GET /api/notifications?unread=true)
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	list, err := h.service.GetForUser(c.UserContext(), user.ID, c.QueryBool("unread"), c.QueryInt("limit"))
	if err != nil {
		return serviceError(c, err)
	}
	unread, err := h.service.CountUnread(c.UserContext(), user.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"notifications": list, "unread_count": unread})
}

// MarkRead (POST /api/notifications/:id/read)
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.MarkRead(c.UserContext(), user.ID, id); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "bildirim bulunamadı"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkAllRead (POST /api/notifications/read-all)
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	if err := h.service.MarkAllRead(c.UserContext(), user.ID); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
