package api

import (
	"strings"

	"davetli.app/services"

	"github.com/gofiber/fiber/v2"
)

// CheckinHandler PIN korumalı check-in konsolu uçları. Konsol uçları
// Authorization başlığındaki oturum anahtarıyla çalışır; anahtar her
// istekte etkinliğin güncel PIN'ine karşı doğrulanır.
type CheckinHandler struct {
	service services.ICheckinService
}

// NewCheckinHandler yeni bir CheckinHandler örneği oluşturur.
func NewCheckinHandler() *CheckinHandler {
	return &CheckinHandler{service: services.NewCheckinService()}
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}

// VerifyPinRequest konsol giriş gövdesi.
type VerifyPinRequest struct {
	EventCode string `json:"event_code" validate:"required"`
	Pin       string `json:"pin" validate:"required,len=6,numeric"`
}

// VerifyPin (POST /checkin/verify-pin)
func (h *CheckinHandler) VerifyPin(c *fiber.Ctx) error {
	var req VerifyPinRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	session, err := h.service.VerifyPin(c.UserContext(), req.EventCode, req.Pin, c.IP(), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(session)
}

// Search (GET /checkin/search?q=...)
func (h *CheckinHandler) Search(c *fiber.Ctx) error {
	list, err := h.service.Search(c.UserContext(), bearerToken(c), c.Query("q"), c.QueryInt("limit"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"results": list})
}

// CheckInRequest giriş kaydı gövdesi.
type CheckInRequest struct {
	ActualGuests int    `json:"actual_guests" validate:"gte=0"`
	Notes        string `json:"notes"`
}

// CheckIn (POST /checkin/invitations/:id) mükerrer denemede 409 döner,
// yanıt önceki girişin zamanını taşır.
func (h *CheckinHandler) CheckIn(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req CheckInRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "istek gövdesi çözümlenemedi"})
	}
	ei, err := h.service.CheckIn(c.UserContext(), bearerToken(c), id, req.ActualGuests, req.Notes, c.IP())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(ei)
}

// Undo (POST /checkin/invitations/:id/undo)
func (h *CheckinHandler) Undo(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.UndoCheckIn(c.UserContext(), bearerToken(c), id, c.IP()); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Recent (GET /checkin/recent)
func (h *CheckinHandler) Recent(c *fiber.Ctx) error {
	list, err := h.service.RecentCheckins(c.UserContext(), bearerToken(c), c.QueryInt("limit"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"recent": list})
}

// Stats (GET /checkin/stats)
func (h *CheckinHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.ConsoleStats(c.UserContext(), bearerToken(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(stats)
}

// StaffCheckIn (POST /api/invitations/:id/checkin) oturum açmış personel girişi.
func (h *CheckinHandler) StaffCheckIn(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req CheckInRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "istek gövdesi çözümlenemedi"})
	}
	ei, err := h.service.CheckInAsUser(c.UserContext(), user, id, req.ActualGuests, req.Notes, c.IP())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(ei)
}
