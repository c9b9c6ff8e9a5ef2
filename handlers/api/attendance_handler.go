package api

import (
	"davetli.app/models"
	"davetli.app/services"

	"github.com/gofiber/fiber/v2"
)

// AttendanceHandler katılım kodu ve gönderim takibi uçları.
type AttendanceHandler struct {
	service services.IAttendanceService
}

// NewAttendanceHandler yeni bir AttendanceHandler örneği oluşturur.
func NewAttendanceHandler() *AttendanceHandler {
	return &AttendanceHandler{service: services.NewAttendanceService()}
}

// GenerateCode (POST /api/invitations/:id/code) kodu olan kayıtta no-op.
func (h *AttendanceHandler) GenerateCode(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ei, err := h.service.GenerateCode(c.UserContext(), user, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{
		"event_invitee_id": ei.ID,
		"attendance_code":  ei.AttendanceCode,
	})
}

// GenerateForEvent (POST /api/events/:id/codes)
func (h *AttendanceHandler) GenerateForEvent(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	eventID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	summary, err := h.service.GenerateCodesForEvent(c.UserContext(), user, eventID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(summary)
}

// MarkSentRequest gönderim işaretleme gövdesi.
type MarkSentRequest struct {
	IDs    []uint                  `json:"ids" validate:"required,min=1,dive,gt=0"`
	Method models.InvitationMethod `json:"method" validate:"required"`
}

// MarkSent (POST /api/invitations/mark-sent)
func (h *AttendanceHandler) MarkSent(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	var req MarkSentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	summary := h.service.MarkInvitationsSent(c.UserContext(), user, req.IDs, req.Method)
	return c.JSON(summary)
}

// UndoSent (POST /api/invitations/:id/undo-sent)
func (h *AttendanceHandler) UndoSent(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.UndoMarkSent(c.UserContext(), user, id); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Stats (GET /api/events/:id/stats)
func (h *AttendanceHandler) Stats(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	eventID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	stats, err := h.service.GetStats(c.UserContext(), user, eventID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(stats)
}
