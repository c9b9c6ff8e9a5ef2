package routes

import (
	"strconv"

	"davetli.app/handlers/api"
	"davetli.app/models"
	"davetli.app/repositories"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	recoverMiddleware "github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupRoutes tüm uygulama rotalarını ve genel middleware'leri ayarlar.
func SetupRoutes(app *fiber.App) {
	app.Use(recoverMiddleware.New()) // Panic yakalama
	app.Use(logger.New())            // İstek loglama
	app.Use(identityMiddleware())

	registerAPIRoutes(app)
	registerPortalRoutes(app)
	registerCheckinRoutes(app)

	app.Use(notFoundHandler)
}

// identityMiddleware kimliği X-User-ID başlığından çözer. Kimlik
// doğrulamanın kendisi (oturum, token) ters proxy / ağ geçidi katmanındadır;
// burada yalnızca kullanıcı kaydı yüklenir. Portal ve check-in konsolu
// başlıksız çalışır.
func identityMiddleware() fiber.Handler {
	userRepo := repositories.NewUserRepository()
	return func(c *fiber.Ctx) error {
		header := c.Get("X-User-ID")
		if header == "" {
			return c.Next()
		}
		id, err := strconv.ParseUint(header, 10, 32)
		if err != nil {
			return c.Next()
		}
		user, err := userRepo.FindByID(c.UserContext(), uint(id))
		if err != nil || !user.IsActive {
			return c.Next()
		}
		c.Locals("user", user)
		c.Locals("userID", user.ID)
		return c.Next()
	}
}

// requireRole rota grubunu verilen rollerle sınırlar.
func requireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *fiber.Ctx) error {
		user, _ := c.Locals("user").(*models.User)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "kimlik doğrulaması gerekli"})
		}
		if !allowed[user.Role] {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "bu işlem için yetkiniz yok"})
		}
		return c.Next()
	}
}

func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "kaynak bulunamadı"})
}

func registerAPIRoutes(app *fiber.App) {
	eventHandler := api.NewEventHandler()
	inviteeHandler := api.NewInviteeHandler()
	approvalHandler := api.NewApprovalHandler()
	attendanceHandler := api.NewAttendanceHandler()
	quotaHandler := api.NewQuotaHandler()
	portalHandler := api.NewPortalHandler()
	checkinHandler := api.NewCheckinHandler()
	notificationHandler := api.NewNotificationHandler()

	staff := []models.Role{models.RoleAdmin, models.RoleDirector, models.RoleOrganizer}

	apiGroup := app.Group("/api")

	// Etkinlikler
	events := apiGroup.Group("/events", requireRole(staff...))
	events.Get("/", eventHandler.List)
	events.Post("/", requireRole(models.RoleAdmin), eventHandler.Create)
	events.Post("/refresh-statuses", eventHandler.RefreshStatuses)
	events.Get("/:id", eventHandler.Get)
	events.Put("/:id", requireRole(models.RoleAdmin), eventHandler.Update)
	events.Patch("/:id/status", requireRole(models.RoleAdmin), eventHandler.SetStatus)
	events.Delete("/:id", requireRole(models.RoleAdmin), eventHandler.Delete)

	// Check-in PIN yönetimi
	events.Post("/:id/checkin-pin", requireRole(models.RoleAdmin), eventHandler.GeneratePin)
	events.Get("/:id/checkin-pin", requireRole(models.RoleAdmin), eventHandler.GetPin)
	events.Patch("/:id/checkin-pin", requireRole(models.RoleAdmin), eventHandler.SetPinActive)
	events.Patch("/:id/checkin-pin/auto-deactivate", requireRole(models.RoleAdmin), eventHandler.SetPinAutoDeactivate)

	// Davetli başvuruları
	events.Post("/:id/invitees", inviteeHandler.Submit)
	events.Get("/:id/invitees", inviteeHandler.List)
	events.Get("/:id/pending", approvalHandler.Pending)

	// Katılım kodları ve raporlar
	events.Post("/:id/codes", requireRole(models.RoleAdmin, models.RoleDirector), attendanceHandler.GenerateForEvent)
	events.Get("/:id/stats", requireRole(models.RoleAdmin, models.RoleDirector), attendanceHandler.Stats)

	// Kontenjanlar
	events.Get("/:id/quotas", quotaHandler.List)
	events.Get("/:id/quotas/:groupID", quotaHandler.Check)
	events.Put("/:id/quotas/:groupID", requireRole(models.RoleAdmin), quotaHandler.Set)
	events.Delete("/:id/quotas/:groupID", requireRole(models.RoleAdmin), quotaHandler.Remove)

	// Davetiye kayıtları
	invitations := apiGroup.Group("/invitations", requireRole(staff...))
	invitations.Get("/:id", inviteeHandler.Get)
	invitations.Patch("/:id", inviteeHandler.Update)
	invitations.Delete("/:id", inviteeHandler.Remove)
	invitations.Post("/approve", requireRole(models.RoleAdmin, models.RoleDirector), approvalHandler.Approve)
	invitations.Post("/reject", requireRole(models.RoleAdmin, models.RoleDirector), approvalHandler.Reject)
	invitations.Post("/cancel", requireRole(models.RoleAdmin, models.RoleDirector), approvalHandler.Cancel)
	invitations.Post("/:id/resubmit", approvalHandler.Resubmit)
	invitations.Post("/:id/code", requireRole(models.RoleAdmin, models.RoleDirector), attendanceHandler.GenerateCode)
	invitations.Post("/mark-sent", requireRole(models.RoleAdmin, models.RoleDirector), attendanceHandler.MarkSent)
	invitations.Post("/:id/undo-sent", requireRole(models.RoleAdmin, models.RoleDirector), attendanceHandler.UndoSent)
	invitations.Post("/confirm-attendance", requireRole(models.RoleAdmin), portalHandler.AdminConfirm)
	invitations.Post("/:id/reset-confirmation", requireRole(models.RoleAdmin), portalHandler.ResetConfirmation)
	invitations.Post("/:id/checkin", requireRole(models.RoleAdmin, models.RoleDirector, models.RoleCheckinAttendant), checkinHandler.StaffCheckIn)

	// Kontaklar
	invitees := apiGroup.Group("/invitees", requireRole(staff...))
	invitees.Get("/search", inviteeHandler.Search)
	invitees.Delete("/:id", requireRole(models.RoleAdmin, models.RoleDirector), inviteeHandler.Delete)

	// Bildirimler
	notifications := apiGroup.Group("/notifications", requireRole(
		models.RoleAdmin, models.RoleDirector, models.RoleOrganizer, models.RoleCheckinAttendant))
	notifications.Get("/", notificationHandler.List)
	notifications.Post("/read-all", notificationHandler.MarkAllRead)
	notifications.Post("/:id/read", notificationHandler.MarkRead)
}

// registerPortalRoutes davetli portalı; kimlik başlığı aranmaz.
func registerPortalRoutes(app *fiber.App) {
	portalHandler := api.NewPortalHandler()
	portal := app.Group("/portal")
	portal.Post("/verify", portalHandler.Verify)
	portal.Post("/confirm", portalHandler.Confirm)
}

// registerCheckinRoutes PIN konsolu; oturum anahtarı Authorization
// başlığında taşınır, her uçta yeniden doğrulanır.
func registerCheckinRoutes(app *fiber.App) {
	checkinHandler := api.NewCheckinHandler()
	checkin := app.Group("/checkin")
	checkin.Post("/verify-pin", checkinHandler.VerifyPin)
	checkin.Get("/search", checkinHandler.Search)
	checkin.Get("/recent", checkinHandler.Recent)
	checkin.Get("/stats", checkinHandler.Stats)
	checkin.Post("/invitations/:id", checkinHandler.CheckIn)
	checkin.Post("/invitations/:id/undo", checkinHandler.Undo)
}
