package api

import (
	"davetli.app/models"
	"davetli.app/pkg/queryparams"
	"davetli.app/repositories"
	"davetli.app/services"

	"github.com/gofiber/fiber/v2"
)

// InviteeHandler davetli başvurusu ve kontak uçları.
type InviteeHandler struct {
	service services.IInviteeService
}

// NewInviteeHandler yeni bir InviteeHandler örneği oluşturur.
func NewInviteeHandler() *InviteeHandler {
	return &InviteeHandler{service: services.NewInviteeService()}
}

// SubmitRequest davetli başvuru gövdesi.
type SubmitRequest struct {
	Name           string `json:"name" validate:"required,min=2,max=100"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone" validate:"required"`
	SecondaryPhone string `json:"secondary_phone"`
	Title          string `json:"title" validate:"max=50"`
	Position       string `json:"position" validate:"max=100"`
	Company        string `json:"company" validate:"max=150"`
	Address        string `json:"address" validate:"max=255"`
	Notes          string `json:"notes"`
	PlusOne        int    `json:"plus_one" validate:"gte=0"`
	CategoryID     *uint  `json:"category_id"`
	InviterName    string `json:"inviter_name" validate:"max=150"`
	InviterGroupID *uint  `json:"inviter_group_id"`
}

// Submit (POST /api/events/:id/invitees)
func (h *InviteeHandler) Submit(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	eventID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req SubmitRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ei, err := h.service.SubmitInvitation(c.UserContext(), user, services.SubmitInput{
		EventID:        eventID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		SecondaryPhone: req.SecondaryPhone,
		Title:          req.Title,
		Position:       req.Position,
		Company:        req.Company,
		Address:        req.Address,
		Notes:          req.Notes,
		PlusOne:        req.PlusOne,
		CategoryID:     req.CategoryID,
		InviterName:    req.InviterName,
		InviterGroupID: req.InviterGroupID,
		IPAddress:      c.IP(),
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ei)
}

// List (GET /api/events/:id/invitees?status=...&page=...&per_page=...)
func (h *InviteeHandler) List(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	eventID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	params := queryparams.DefaultListParams("created_at")
	if err := c.QueryParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "geçersiz liste parametreleri"})
	}
	params.Validate()

	filters := repositories.InvitationFilters{
		EventID: eventID,
		Status:  models.InvitationStatus(c.Query("status")),
		Limit:   params.PerPage,
		Offset:  params.CalculateOffset(),
	}
	list, total, err := h.service.ListForEvent(c.UserContext(), user, filters)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(queryparams.PaginatedResult{
		Data: list,
		Meta: queryparams.PaginationMeta{
			CurrentPage: params.Page,
			PerPage:     params.PerPage,
			TotalItems:  total,
			TotalPages:  queryparams.CalculateTotalPages(total, params.PerPage),
		},
	})
}

// Get (GET /api/invitations/:id)
func (h *InviteeHandler) Get(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ei, err := h.service.GetInvitation(c.UserContext(), user, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(ei)
}

// UpdateRequest bekleyen kaydın düzenlenebilir alanları.
type UpdateRequest struct {
	PlusOne     *int    `json:"plus_one" validate:"omitempty,gte=0"`
	Notes       *string `json:"notes"`
	CategoryID  *uint   `json:"category_id"`
	InviterName *string `json:"inviter_name"`
}

// Update (PATCH /api/invitations/:id)
func (h *InviteeHandler) Update(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ei, err := h.service.UpdateInvitation(c.UserContext(), user, id, req.PlusOne, req.Notes, req.CategoryID, req.InviterName)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(ei)
}

// Remove (DELETE /api/invitations/:id)
func (h *InviteeHandler) Remove(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.RemoveFromEvent(c.UserContext(), user, id, c.IP()); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Search (GET /api/invitees/search?q=...)
func (h *InviteeHandler) Search(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	list, err := h.service.SearchInvitees(c.UserContext(), user, c.Query("q"), c.QueryInt("limit"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"invitees": list})
}

// Delete (DELETE /api/invitees/:id) kontağı siler.
func (h *InviteeHandler) Delete(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteInvitee(c.UserContext(), user, id); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
