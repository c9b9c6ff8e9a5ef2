package api

import (
	"davetli.app/services"

	"github.com/gofiber/fiber/v2"
)

// QuotaHandler kontenjan yönetimi uçları.
type QuotaHandler struct {
	service services.IQuotaService
}

// NewQuotaHandler yeni bir QuotaHandler örneği oluşturur.
func NewQuotaHandler() *QuotaHandler {
	return &QuotaHandler{service: services.NewQuotaService()}
}

// List (GET /api/events/:id/quotas)
func (h *QuotaHandler) List(c *fiber.Ctx) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	eventID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	quotas, err := h.service.GetQuotasForEvent(c.UserContext(), eventID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"quotas": quotas})
}

// Check (GET /api/events/:id/quotas/:groupID)
func (h *QuotaHandler) Check(c *fiber.Ctx) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	eventID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	groupID, err := paramID(c, "groupID")
	if err != nil {
		return err
	}
	status, err := h.service.CheckQuota(c.UserContext(), eventID, groupID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(status)
}

// SetRequest kontenjan atama gövdesi; quota null = sınırsız.
type SetRequest struct {
	Quota *int `json:"quota" validate:"omitempty,gte=0"`
}

// Set (PUT /api/events/:id/quotas/:groupID)
func (h *QuotaHandler) Set(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	eventID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	groupID, err := paramID(c, "groupID")
	if err != nil {
		return err
	}
	var req SetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.service.SetQuota(c.UserContext(), user, eventID, groupID, req.Quota); err != nil {
		return serviceError(c, err)
	}
	status, err := h.service.CheckQuota(c.UserContext(), eventID, groupID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(status)
}

// Remove (DELETE /api/events/:id/quotas/:groupID)
func (h *QuotaHandler) Remove(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	eventID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	groupID, err := paramID(c, "groupID")
	if err != nil {
		return err
	}
	if err := h.service.RemoveQuota(c.UserContext(), user, eventID, groupID); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
