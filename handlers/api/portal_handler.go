package api

import (
	"davetli.app/services"

	"github.com/gofiber/fiber/v2"
)

// PortalHandler davetli portalı uçları. Kimlik doğrulaması yoktur;
// katılım kodu tek erişim anahtarıdır.
type PortalHandler struct {
	service services.IPortalService
}

// NewPortalHandler yeni bir PortalHandler örneği oluşturur.
func NewPortalHandler() *PortalHandler {
	return &PortalHandler{service: services.NewPortalService()}
}

// VerifyRequest portal doğrulama gövdesi: kod veya telefon, en az biri.
type VerifyRequest struct {
	Code  string `json:"code"`
	Phone string `json:"phone"`
}

// Verify (POST /portal/verify)
func (h *PortalHandler) Verify(c *fiber.Ctx) error {
	var req VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "istek gövdesi çözümlenemedi"})
	}
	var (
		view *services.PortalView
		err  error
	)
	switch {
	case req.Code != "":
		view, err = h.service.VerifyByCode(c.UserContext(), req.Code, c.IP())
	case req.Phone != "":
		view, err = h.service.VerifyByPhone(c.UserContext(), req.Phone, c.IP())
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "kod veya telefon zorunludur"})
	}
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(view)
}

// ConfirmRequest LCV gövdesi.
type ConfirmRequest struct {
	Code       string `json:"code" validate:"required"`
	IsComing   *bool  `json:"is_coming" validate:"required"`
	GuestCount *int   `json:"guest_count" validate:"omitempty,gte=0"`
}

// Confirm (POST /portal/confirm) son yazan kazanır; misafir sayısı
// izin verilen tavana kırpılır.
func (h *PortalHandler) Confirm(c *fiber.Ctx) error {
	var req ConfirmRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	view, err := h.service.Confirm(c.UserContext(), req.Code, *req.IsComing, req.GuestCount, c.IP())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(view)
}

// AdminConfirmRequest elle LCV gövdesi.
type AdminConfirmRequest struct {
	InvitationIDs []uint `json:"invitation_ids" validate:"required,min=1"`
	IsComing      *bool  `json:"is_coming" validate:"required"`
	GuestCount    *int   `json:"guest_count" validate:"omitempty,gte=0"`
}

// AdminConfirm (POST /api/invitations/confirm-attendance) admin ucu;
// davetli adına LCV yanıtı işler.
func (h *PortalHandler) AdminConfirm(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	var req AdminConfirmRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	summary, err := h.service.AdminConfirm(c.UserContext(), user, req.InvitationIDs, *req.IsComing, req.GuestCount, c.IP())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(summary)
}

// ResetConfirmation (POST /api/invitations/:id/reset-confirmation) admin ucu.
func (h *PortalHandler) ResetConfirmation(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.ResetConfirmation(c.UserContext(), user, id); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
