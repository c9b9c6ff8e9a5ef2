package api

import (
	"time"

	"davetli.app/models"
	"davetli.app/services"

	"github.com/gofiber/fiber/v2"
)

// EventHandler etkinlik yönetimi uçları.
type EventHandler struct {
	service services.IEventService
}

// NewEventHandler yeni bir EventHandler örneği oluşturur.
func NewEventHandler() *EventHandler {
	return &EventHandler{service: services.NewEventService()}
}

// EventRequest etkinlik oluşturma/güncelleme gövdesi.
type EventRequest struct {
	Name                          string    `json:"name" validate:"required,min=2,max=200"`
	StartDate                     time.Time `json:"start_date" validate:"required"`
	EndDate                       time.Time `json:"end_date" validate:"required"`
	Venue                         string    `json:"venue" validate:"max=200"`
	Description                   string    `json:"description"`
	IsAllGroups                   bool      `json:"is_all_groups"`
	GroupIDs                      []uint    `json:"group_ids" validate:"dive,gt=0"`
	CheckinPinAutoDeactivateHours *int      `json:"checkin_pin_auto_deactivate_hours" validate:"omitempty,gte=0"`
}

func (r EventRequest) toInput() services.EventInput {
	return services.EventInput{
		Name:                          r.Name,
		StartDate:                     r.StartDate,
		EndDate:                       r.EndDate,
		Venue:                         r.Venue,
		Description:                   r.Description,
		IsAllGroups:                   r.IsAllGroups,
		GroupIDs:                      r.GroupIDs,
		CheckinPinAutoDeactivateHours: r.CheckinPinAutoDeactivateHours,
	}
}

// Create (POST /api/events)
func (h *EventHandler) Create(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	var req EventRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	event, err := h.service.CreateEvent(c.UserContext(), user, req.toInput())
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

// List (GET /api/events) görünür etkinlikler; okuma öncesi durumlar
// fırsatçı yenilenir.
func (h *EventHandler) List(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	if _, err := h.service.RefreshAllStatuses(c.UserContext()); err != nil {
		return serviceError(c, err)
	}
	events, err := h.service.GetVisibleEvents(c.UserContext(), user)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"events": events})
}

// Get (GET /api/events/:id)
func (h *EventHandler) Get(c *fiber.Ctx) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.service.RefreshAllStatuses(c.UserContext()); err != nil {
		return serviceError(c, err)
	}
	event, err := h.service.GetEventByID(c.UserContext(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(event)
}

// Update (PUT /api/events/:id)
func (h *EventHandler) Update(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req EventRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	event, err := h.service.UpdateEvent(c.UserContext(), user, id, req.toInput())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(event)
}

// SetStatus (PATCH /api/events/:id/status) manuel durum ataması.
func (h *EventHandler) SetStatus(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		Status models.EventStatus `json:"status" validate:"required"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.service.SetEventStatus(c.UserContext(), user, id, req.Status); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Delete (DELETE /api/events/:id)
func (h *EventHandler) Delete(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteEvent(c.UserContext(), user, id); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RefreshStatuses (POST /api/events/refresh-statuses) toplu yenilemeyi
// elle tetikler; zamanlayıcılar da bu ucu kullanır.
func (h *EventHandler) RefreshStatuses(c *fiber.Ctx) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	result, err := h.service.RefreshAllStatuses(c.UserContext())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(result)
}

// GeneratePin (POST /api/events/:id/checkin-pin)
func (h *EventHandler) GeneratePin(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	pin, err := h.service.GenerateCheckinPin(c.UserContext(), user, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"pin": pin})
}

// GetPin (GET /api/events/:id/checkin-pin)
func (h *EventHandler) GetPin(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	pin, err := h.service.GetCheckinPin(c.UserContext(), user, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"pin": pin})
}

// SetPinActive (PATCH /api/events/:id/checkin-pin)
func (h *EventHandler) SetPinActive(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.service.SetCheckinPinActive(c.UserContext(), user, id, req.Active); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetPinAutoDeactivate (PATCH /api/events/:id/checkin-pin/auto-deactivate)
// PIN'in etkinlik bitiminden kaç saat sonra kapanacağını ayarlar; nil
// varsayılan pencereye döner.
func (h *EventHandler) SetPinAutoDeactivate(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		Hours *int `json:"hours"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.service.SetPinAutoDeactivateHours(c.UserContext(), user, id, req.Hours); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
