package api

import (
	"davetli.app/services"

	"github.com/gofiber/fiber/v2"
)

// ApprovalHandler onay akışı uçları.
type ApprovalHandler struct {
	service services.IApprovalService
}

// NewApprovalHandler yeni bir ApprovalHandler örneği oluşturur.
func NewApprovalHandler() *ApprovalHandler {
	return &ApprovalHandler{service: services.NewApprovalService()}
}

// DecisionRequest toplu onay/red gövdesi.
type DecisionRequest struct {
	IDs   []uint `json:"ids" validate:"required,min=1,dive,gt=0"`
	Notes string `json:"notes"`
}

// Pending (GET /api/events/:id/pending)
func (h *ApprovalHandler) Pending(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	eventID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	list, err := h.service.ListPending(c.UserContext(), user, eventID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"pending": list, "count": len(list)})
}

// Approve (POST /api/invitations/approve) kısmi başarı normaldir;
// sonuç kayıt bazında döner.
func (h *ApprovalHandler) Approve(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	var req DecisionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	summary := h.service.Approve(c.UserContext(), user, req.IDs, req.Notes, c.IP())
	return c.JSON(summary)
}

// Reject (POST /api/invitations/reject)
func (h *ApprovalHandler) Reject(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	var req DecisionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	summary := h.service.Reject(c.UserContext(), user, req.IDs, req.Notes, c.IP())
	return c.JSON(summary)
}

// CancelRequest toplu iptal gövdesi; gerekçe zorunludur.
type CancelRequest struct {
	IDs   []uint `json:"invitation_ids" validate:"required,min=1"`
	Notes string `json:"notes" validate:"required"`
}

// Cancel (POST /api/invitations/cancel) onaylı kayıtları gerekçeyle iptal
// eder; kısmi başarı normaldir.
func (h *ApprovalHandler) Cancel(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	var req CancelRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	summary, err := h.service.Cancel(c.UserContext(), user, req.IDs, req.Notes, c.IP())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(summary)
}

// Resubmit (POST /api/invitations/:id/resubmit)
func (h *ApprovalHandler) Resubmit(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ei, err := h.service.Resubmit(c.UserContext(), user, id, c.IP())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(ei)
}
