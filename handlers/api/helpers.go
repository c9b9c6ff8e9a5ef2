package api

import (
	"errors"
	"strconv"

	"davetli.app/models"
	"davetli.app/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// currentUser identity middleware'in Locals'a koyduğu kullanıcı.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

func requireUser(c *fiber.Ctx) (*models.User, error) {
	user := currentUser(c)
	if user == nil {
		return nil, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "kimlik doğrulaması gerekli"})
	}
	return user, nil
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "geçersiz " + name})
	}
	return uint(id), nil
}

func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "istek gövdesi çözümlenemedi"})
	}
	if err := validate.Struct(dst); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "doğrulama hatası: " + err.Error()})
	}
	return nil
}

// serviceError servis hatalarını HTTP durum kodlarına eşler. Bilinmeyen
// hatalar 500 döner ve mesaj dışarı sızdırılmaz.
func serviceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "beklenmeyen bir hata oluştu"

	var alreadyIn *services.AlreadyCheckedInError
	if errors.As(err, &alreadyIn) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":         alreadyIn.Error(),
			"checked_in_at": alreadyIn.CheckedInAt,
		})
	}

	switch {
	case errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrInviteeNotFound),
		errors.Is(err, services.ErrInvitationNotFound),
		errors.Is(err, services.ErrApprovalRecordNotFound),
		errors.Is(err, services.ErrAttendanceNotFound),
		errors.Is(err, services.ErrPortalRecordNotFound),
		errors.Is(err, services.ErrCheckinEventNotFound),
		errors.Is(err, services.ErrCheckinRecordNotFound),
		errors.Is(err, services.ErrQuotaEventNotFound),
		errors.Is(err, services.ErrQuotaGroupNotFound),
		errors.Is(err, services.ErrEventGroupNotFound):
		status = fiber.StatusNotFound
		message = err.Error()

	case errors.Is(err, services.ErrEventForbidden),
		errors.Is(err, services.ErrInviteeForbidden),
		errors.Is(err, services.ErrApprovalForbidden),
		errors.Is(err, services.ErrAttendanceForbidden),
		errors.Is(err, services.ErrQuotaForbidden),
		errors.Is(err, services.ErrPortalForbidden),
		errors.Is(err, services.ErrInvitationResubmitDenied):
		status = fiber.StatusForbidden
		message = err.Error()

	case errors.Is(err, services.ErrInviteeAlreadyInvited),
		errors.Is(err, services.ErrInviteePhoneConflict),
		errors.Is(err, services.ErrQuotaExceeded),
		errors.Is(err, services.ErrEventDeletionBlocked):
		status = fiber.StatusConflict
		message = err.Error()

	case errors.Is(err, services.ErrCheckinPinInvalid),
		errors.Is(err, services.ErrCheckinSessionInvalid):
		status = fiber.StatusUnauthorized
		message = err.Error()

	case errors.Is(err, services.ErrEventInvalidInput),
		errors.Is(err, services.ErrEventNameRequired),
		errors.Is(err, services.ErrEventInvalidDates),
		errors.Is(err, services.ErrEventInvalidStatus),
		errors.Is(err, services.ErrEventNegativeHours),
		errors.Is(err, services.ErrEventPinNotSet),
		errors.Is(err, services.ErrInviteeInvalidInput),
		errors.Is(err, services.ErrInviteeNameRequired),
		errors.Is(err, services.ErrInviteePhoneInvalid),
		errors.Is(err, services.ErrInviteeNegativePlusOne),
		errors.Is(err, services.ErrInviteeEventClosed),
		errors.Is(err, services.ErrInviteeEventNotAssigned),
		errors.Is(err, services.ErrInvitationNotEditable),
		errors.Is(err, services.ErrInvitationEventEnded),
		errors.Is(err, services.ErrInvitationMethodInvalid),
		errors.Is(err, services.ErrApprovalNotPending),
		errors.Is(err, services.ErrApprovalNotApproved),
		errors.Is(err, services.ErrApprovalNotRejected),
		errors.Is(err, services.ErrApprovalAfterCheckin),
		errors.Is(err, services.ErrApprovalReasonRequired),
		errors.Is(err, services.ErrAttendanceNotApproved),
		errors.Is(err, services.ErrAttendanceNoCode),
		errors.Is(err, services.ErrAttendanceNotSent),
		errors.Is(err, services.ErrQuotaNegative),
		errors.Is(err, services.ErrPortalInvalidInput),
		errors.Is(err, services.ErrPortalNotApproved),
		errors.Is(err, services.ErrPortalEventClosed),
		errors.Is(err, services.ErrCheckinWindowClosed),
		errors.Is(err, services.ErrCheckinNotApproved),
		errors.Is(err, services.ErrCheckinWrongEvent),
		errors.Is(err, services.ErrCheckinNotCheckedIn):
		status = fiber.StatusBadRequest
		message = err.Error()
	}

	return c.Status(status).JSON(fiber.Map{"error": message})
}
