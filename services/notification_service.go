package services

import (
	"context"
	"fmt"

	"davetli.app/configs"
	"davetli.app/configs/configslog"
	"davetli.app/models"
	"davetli.app/repositories"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// INotificationService bildirim tetikleme ve okuma işlemleri. Tetikleyiciler
// en-iyi-çaba çalışır: bildirim yazılamaması ana işlemi asla geri almaz.
type INotificationService interface {
	NotifyInvitationSubmitted(ctx context.Context, ei *models.EventInvitee, submitter *models.User)
	NotifyInvitationDecision(ctx context.Context, ei *models.EventInvitee, decidedBy *models.User)
	NotifyInvitationCancelled(ctx context.Context, ei *models.EventInvitee, cancelledBy *models.User)
	NotifyEventStatusChanged(ctx context.Context, event *models.Event, newStatus models.EventStatus)
	NotifyGroupAssignment(ctx context.Context, event *models.Event, groupIDs []uint, excludeUserID *uint)
	GetForUser(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID uint) error
	MarkAllRead(ctx context.Context, userID uint) error
}

// NotificationService INotificationService arayüzünü uygular.
type NotificationService struct {
	repo     repositories.INotificationRepository
	userRepo repositories.IUserRepository
	db       *gorm.DB
}

// NewNotificationService yeni bir NotificationService örneği oluşturur.
func NewNotificationService() INotificationService {
	return &NotificationService{
		repo:     repositories.NewNotificationRepository(),
		userRepo: repositories.NewUserRepository(),
		db:       configs.GetDB(),
	}
}

// createBulk alıcı listesine yazar; hata loglanır, yutulur.
func (s *NotificationService) createBulk(ctx context.Context, list []models.Notification) {
	if len(list) == 0 {
		return
	}
	// Tetikleyiciler commit sonrasında çağrılır; transaction context'i
	// taşınmaz, kendi bağlantısıyla yazar.
	if err := s.repo.CreateBulk(context.WithoutCancel(ctx), list); err != nil {
		configslog.Log.Error("NotificationService: bildirim yazılamadı", zap.Error(err))
	}
}

// recipients alıcı kümesi kurar; excludeUserID işlemi yapan kişidir ve
// kendi eylemi için bildirim almaz.
func recipients(users []models.User, excludeUserID *uint) []uint {
	out := make([]uint, 0, len(users))
	for _, u := range users {
		if excludeUserID != nil && u.ID == *excludeUserID {
			continue
		}
		out = append(out, u.ID)
	}
	return out
}

func buildFor(userIDs []uint, title, message string, typ models.NotificationType, link string) []models.Notification {
	list := make([]models.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		list = append(list, models.Notification{
			UserID:  id,
			Title:   title,
			Message: message,
			Type:    typ,
			Link:    link,
		})
	}
	return list
}

// NotifyInvitationSubmitted yeni başvuruyu onaylayıcılara duyurur:
// admin'ler + davetlinin grubundaki direktörler, gönderen hariç.
func (s *NotificationService) NotifyInvitationSubmitted(ctx context.Context, ei *models.EventInvitee, submitter *models.User) {
	admins, err := s.userRepo.FindActiveAdmins(ctx)
	if err != nil {
		configslog.Log.Error("NotificationService: admin listesi alınamadı", zap.Error(err))
		return
	}
	users := admins
	if ei.Invitee != nil && ei.Invitee.InviterGroupID != nil {
		directors, err := s.userRepo.FindActiveDirectorsInGroup(ctx, *ei.Invitee.InviterGroupID)
		if err == nil {
			users = append(users, directors...)
		}
	}

	var exclude *uint
	if submitter != nil {
		exclude = &submitter.ID
	}
	name := inviteeName(ei)
	eventName := eventName(ei)
	s.createBulk(ctx, buildFor(recipients(users, exclude),
		"Yeni davetli başvurusu",
		fmt.Sprintf("%s, %s etkinliği için onay bekliyor", name, eventName),
		models.NotifInvitationSubmitted,
		fmt.Sprintf("/events/%d/pending", ei.EventID)))
}

// NotifyInvitationDecision onay/red kararını kaydı giren kullanıcıya iletir.
func (s *NotificationService) NotifyInvitationDecision(ctx context.Context, ei *models.EventInvitee, decidedBy *models.User) {
	if decidedBy != nil && ei.InviterUserID == decidedBy.ID {
		return // kendi kaydına verdiği karar için bildirim üretilmez
	}
	typ := models.NotifInvitationApproved
	verb := "onaylandı"
	if ei.Status == models.StatusRejected {
		typ = models.NotifInvitationRejected
		verb = "reddedildi"
	}
	s.createBulk(ctx, buildFor([]uint{ei.InviterUserID},
		"Davetli başvurusu sonuçlandı",
		fmt.Sprintf("%s için başvurunuz %s (%s)", inviteeName(ei), verb, eventName(ei)),
		typ,
		fmt.Sprintf("/events/%d/invitees/%d", ei.EventID, ei.ID)))
}

// NotifyInvitationCancelled onaylı davetlinin çıkarıldığını kaydı girene iletir.
func (s *NotificationService) NotifyInvitationCancelled(ctx context.Context, ei *models.EventInvitee, cancelledBy *models.User) {
	if cancelledBy != nil && ei.InviterUserID == cancelledBy.ID {
		return
	}
	s.createBulk(ctx, buildFor([]uint{ei.InviterUserID},
		"Davetli kaydı iptal edildi",
		fmt.Sprintf("%s, %s etkinliğinden çıkarıldı", inviteeName(ei), eventName(ei)),
		models.NotifInvitationCancelled,
		fmt.Sprintf("/events/%d", ei.EventID)))
}

// NotifyEventStatusChanged otomatik veya manuel durum geçişini etkinliğe
// atanmış grupların direktörlerine ve admin'lere duyurur.
func (s *NotificationService) NotifyEventStatusChanged(ctx context.Context, event *models.Event, newStatus models.EventStatus) {
	admins, err := s.userRepo.FindActiveAdmins(ctx)
	if err != nil {
		configslog.Log.Error("NotificationService: admin listesi alınamadı", zap.Error(err))
		return
	}
	users := admins
	for _, g := range event.InviterGroups {
		directors, err := s.userRepo.FindActiveDirectorsInGroup(ctx, g.ID)
		if err == nil {
			users = append(users, directors...)
		}
	}
	s.createBulk(ctx, buildFor(recipients(users, nil),
		"Etkinlik durumu değişti",
		fmt.Sprintf("%s etkinliğinin durumu artık: %s", event.Name, newStatus),
		models.NotifEventStatus,
		fmt.Sprintf("/events/%d", event.ID)))
}

// NotifyGroupAssignment etkinliğe yeni atanan grupların direktörlerine haber verir.
func (s *NotificationService) NotifyGroupAssignment(ctx context.Context, event *models.Event, groupIDs []uint, excludeUserID *uint) {
	var users []models.User
	for _, gid := range groupIDs {
		directors, err := s.userRepo.FindActiveDirectorsInGroup(ctx, gid)
		if err != nil {
			configslog.Log.Error("NotificationService: direktör listesi alınamadı",
				zap.Uint("group_id", gid), zap.Error(err))
			continue
		}
		users = append(users, directors...)
	}
	s.createBulk(ctx, buildFor(recipients(users, excludeUserID),
		"Etkinlik atandı",
		fmt.Sprintf("Grubunuz %s etkinliğine davetli girebilir", event.Name),
		models.NotifGroupAssignment,
		fmt.Sprintf("/events/%d", event.ID)))
}

func (s *NotificationService) GetForUser(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]models.Notification, error) {
	return s.repo.FindForUser(ctx, userID, unreadOnly, limit)
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint) error {
	return s.repo.MarkRead(ctx, userID, notificationID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func inviteeName(ei *models.EventInvitee) string {
	if ei.Invitee != nil {
		return ei.Invitee.Name
	}
	return fmt.Sprintf("davetli #%d", ei.InviteeID)
}

func eventName(ei *models.EventInvitee) string {
	if ei.Event != nil {
		return ei.Event.Name
	}
	return fmt.Sprintf("etkinlik #%d", ei.EventID)
}

var _ INotificationService = (*NotificationService)(nil)
