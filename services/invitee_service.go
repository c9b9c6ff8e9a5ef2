package services

import (
	"context"
	"fmt"
	"strings"

	"davetli.app/configs"
	"davetli.app/configs/configslog"
	"davetli.app/models"
	"davetli.app/pkg/eventtime"
	"davetli.app/pkg/phoneutil"
	"davetli.app/repositories"

	"gorm.io/gorm"
)

// InviteeServiceError özel servis hataları
type InviteeServiceError string

func (e InviteeServiceError) Error() string { return string(e) }

const (
	ErrInviteeNotFound          InviteeServiceError = "davetli bulunamadı"
	ErrInviteeInvalidInput      InviteeServiceError = "geçersiz davetli verisi"
	ErrInviteeNameRequired      InviteeServiceError = "davetli adı zorunludur"
	ErrInviteePhoneInvalid      InviteeServiceError = "telefon numarası geçersiz"
	ErrInviteeForbidden         InviteeServiceError = "bu işlem için yetkiniz yok"
	ErrInviteeEventClosed       InviteeServiceError = "etkinlik davetli alımına kapalı"
	ErrInviteeEventNotAssigned  InviteeServiceError = "etkinlik grubunuza atanmamış"
	ErrInviteeAlreadyInvited    InviteeServiceError = "davetli bu etkinliğe zaten eklenmiş"
	ErrInviteePhoneConflict     InviteeServiceError = "bu telefon başka bir grup tarafından aynı etkinliğe eklenmiş"
	ErrInviteeNegativePlusOne   InviteeServiceError = "misafir hakkı negatif olamaz"
	ErrInvitationNotFound       InviteeServiceError = "davetiye kaydı bulunamadı"
	ErrInvitationNotEditable    InviteeServiceError = "yalnızca onay bekleyen kayıtlar düzenlenebilir"
	ErrInvitationEventEnded     InviteeServiceError = "bitmiş etkinliğin kayıtları korunur, silinemez"
	ErrInvitationMethodInvalid  InviteeServiceError = "geçersiz gönderim yöntemi"
	ErrInvitationResubmitDenied InviteeServiceError = "bu kaydı yeniden gönderme yetkiniz yok"
)

// SubmitInput davetli başvurusunun girdisi.
type SubmitInput struct {
	EventID        uint
	Name           string
	Email          string
	Phone          string
	SecondaryPhone string
	Title          string
	Position       string
	Company        string
	Address        string
	Notes          string
	PlusOne        int
	CategoryID     *uint
	InviterName    string // daveti yapan gerçek kişi; boş olabilir
	InviterGroupID *uint  // yalnızca admin farklı grup adına girebilir
	IPAddress      string
}

// IInviteeService kontak yönetimi ve davetli başvurusu.
type IInviteeService interface {
	SubmitInvitation(ctx context.Context, actor *models.User, input SubmitInput) (*models.EventInvitee, error)
	UpdateInvitation(ctx context.Context, actor *models.User, eventInviteeID uint, plusOne *int, notes *string, categoryID *uint, inviterName *string) (*models.EventInvitee, error)
	RemoveFromEvent(ctx context.Context, actor *models.User, eventInviteeID uint, ip string) error
	GetInvitation(ctx context.Context, actor *models.User, eventInviteeID uint) (*models.EventInvitee, error)
	ListForEvent(ctx context.Context, actor *models.User, filters repositories.InvitationFilters) ([]models.EventInvitee, int64, error)
	SearchInvitees(ctx context.Context, actor *models.User, q string, limit int) ([]models.Invitee, error)
	DeleteInvitee(ctx context.Context, actor *models.User, inviteeID uint) error
}

// InviteeService IInviteeService arayüzünü uygular.
type InviteeService struct {
	inviteeRepo  repositories.IInviteeRepository
	eiRepo       repositories.IEventInviteeRepository
	eventRepo    repositories.IEventRepository
	inviterRepo  repositories.IInviterRepository
	quotaRepo    repositories.IEventGroupQuotaRepository
	auditRepo    repositories.IAuditLogRepository
	userRepo     repositories.IUserRepository
	notification INotificationService
	db           *gorm.DB
	phoneRegion  string
}

// NewInviteeService yeni bir InviteeService örneği oluşturur.
func NewInviteeService() IInviteeService {
	return &InviteeService{
		inviteeRepo:  repositories.NewInviteeRepository(),
		eiRepo:       repositories.NewEventInviteeRepository(),
		eventRepo:    repositories.NewEventRepository(),
		inviterRepo:  repositories.NewInviterRepository(),
		quotaRepo:    repositories.NewEventGroupQuotaRepository(),
		auditRepo:    repositories.NewAuditLogRepository(),
		userRepo:     repositories.NewUserRepository(),
		notification: NewNotificationService(),
		db:           configs.GetDB(),
		phoneRegion:  configs.LoadConfig().DefaultPhoneRegion,
	}
}

// resolveGroup başvurunun yazılacağı grubu belirler. Admin dilediği grup
// adına girebilir; diğer roller yalnızca kendi grubuna.
func resolveGroup(actor *models.User, requested *uint) (*uint, error) {
	if actor.IsAdmin() {
		if requested != nil {
			return requested, nil
		}
		return actor.InviterGroupID, nil
	}
	if actor.InviterGroupID == nil {
		return nil, ErrInviteeForbidden
	}
	if requested != nil && *requested != *actor.InviterGroupID {
		return nil, ErrInviteeForbidden
	}
	return actor.InviterGroupID, nil
}

// SubmitInvitation davetli başvurusunun tamamı: kontak çözümü, telefon
// çakışma guard'ı, kontenjan denetimi ve kayıt tek transaction içinde.
func (s *InviteeService) SubmitInvitation(ctx context.Context, actor *models.User, input SubmitInput) (*models.EventInvitee, error) {
	if actor == nil {
		return nil, ErrInviteeForbidden
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInviteeNameRequired
	}
	if input.PlusOne < 0 {
		return nil, ErrInviteeNegativePlusOne
	}
	phone, err := phoneutil.Normalize(input.Phone, s.phoneRegion)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInviteePhoneInvalid, err)
	}
	secondaryPhone := ""
	if input.SecondaryPhone != "" {
		secondaryPhone, err = phoneutil.Normalize(input.SecondaryPhone, s.phoneRegion)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInviteePhoneInvalid, err)
		}
	}
	groupID, err := resolveGroup(actor, input.InviterGroupID)
	if err != nil {
		return nil, err
	}

	var created *models.EventInvitee
	err = withTx(ctx, s.db, func(txCtx context.Context) error {
		event, err := s.eventRepo.FindByID(txCtx, input.EventID)
		if err != nil {
			if err == repositories.ErrNotFound {
				return ErrEventNotFound
			}
			return err
		}
		if !event.CanAddInvitees() {
			return ErrInviteeEventClosed
		}
		if !actor.IsAdmin() {
			if groupID == nil || !event.AssignedToGroup(*groupID) {
				return ErrInviteeEventNotAssigned
			}
		}

		// Gruplar arası telefon çakışması: aynı numara başka grupça aynı
		// etkinliğe reddedilmemiş durumla girilmişse engellenir. Admin
		// bilinçli mükerrer girişleri geçebilir.
		if !actor.IsAdmin() && groupID != nil {
			conflict, err := s.eiRepo.FindCrossGroupPhoneConflict(txCtx, input.EventID, phone, *groupID)
			if err != nil && err != repositories.ErrNotFound {
				return err
			}
			if conflict != nil {
				return ErrInviteePhoneConflict
			}
		}

		// Kontenjan: reddedilmemiş kayıtlar canlı sayılır; limit aşılırsa
		// başvuru reddedilir. Admin kontenjan denetiminden muaftır.
		if !actor.IsAdmin() && groupID != nil {
			quota, err := s.quotaRepo.Find(txCtx, input.EventID, *groupID)
			if err != nil && err != repositories.ErrNotFound {
				return err
			}
			if quota != nil && quota.Quota != nil {
				used, err := s.eiRepo.CountGroupUsage(txCtx, input.EventID, *groupID)
				if err != nil {
					return err
				}
				if used >= int64(*quota.Quota) {
					return ErrQuotaExceeded
				}
			}
		}

		invitee, err := s.resolveContact(txCtx, input, phone, secondaryPhone, groupID)
		if err != nil {
			return err
		}

		var inviterID *uint
		if name := strings.TrimSpace(input.InviterName); name != "" {
			inviter, err := s.resolveInviter(txCtx, name, groupID)
			if err != nil {
				return err
			}
			inviterID = &inviter.ID
		}

		now := eventtime.Now()
		existing, err := s.eiRepo.FindByEventAndInvitee(txCtx, input.EventID, invitee.ID)
		if err != nil && err != repositories.ErrNotFound {
			return err
		}
		if existing != nil {
			if existing.Status != models.StatusRejected {
				return ErrInviteeAlreadyInvited
			}
			// Reddedilmiş kayıt yeniden gönderilir; izin kontrolü ayrı
			if err := canResubmit(txCtx, s.userRepo, actor, existing); err != nil {
				return err
			}
			before := *existing
			existing.Resubmit(now)
			existing.Notes = input.Notes
			existing.PlusOne = input.PlusOne
			existing.CategoryID = input.CategoryID
			if inviterID != nil {
				existing.InviterID = inviterID
			}
			if err := s.eiRepo.Update(txCtx, existing); err != nil {
				return err
			}
			created = existing
			return auditEntry(txCtx, s.auditRepo, &actor.ID, "invitation_resubmitted", "event_invitees",
				existing.ID, before, existing, input.IPAddress)
		}

		created = &models.EventInvitee{
			EventID:       input.EventID,
			InviteeID:     invitee.ID,
			CategoryID:    input.CategoryID,
			InviterID:     inviterID,
			InviterUserID: actor.ID,
			InviterRole:   actor.Role,
			Notes:         input.Notes,
			Status:        models.StatusWaitingForApproval,
			StatusDate:    now,
			PlusOne:       input.PlusOne,
		}
		if err := s.eiRepo.Create(txCtx, created); err != nil {
			return err
		}
		return auditEntry(txCtx, s.auditRepo, &actor.ID, "invitation_submitted", "event_invitees",
			created.ID, nil, created, input.IPAddress)
	})
	if err != nil {
		return nil, err
	}

	full, err := s.eiRepo.FindByID(ctx, created.ID)
	if err != nil {
		return created, nil
	}
	go s.notification.NotifyInvitationSubmitted(context.WithoutCancel(ctx), full, actor)
	configslog.SLog.Infof("Davetli başvurusu alındı: event=%d invitee=%d", full.EventID, full.InviteeID)
	return full, nil
}

// resolveContact telefon numarasına göre grup içindeki kontağı bulur veya
// oluşturur; mevcutsa profil alanları son girilenle güncellenir.
func (s *InviteeService) resolveContact(ctx context.Context, input SubmitInput, phone, secondaryPhone string, groupID *uint) (*models.Invitee, error) {
	invitee, err := s.inviteeRepo.FindByPhoneInGroup(ctx, phone, groupID)
	if err != nil && err != repositories.ErrNotFound {
		return nil, err
	}
	if invitee == nil {
		invitee = &models.Invitee{
			Name:           strings.TrimSpace(input.Name),
			Email:          strings.ToLower(strings.TrimSpace(input.Email)),
			Phone:          phone,
			SecondaryPhone: secondaryPhone,
			Title:          input.Title,
			Position:       input.Position,
			Company:        input.Company,
			Address:        input.Address,
			PlusOne:        input.PlusOne,
			CategoryID:     input.CategoryID,
			InviterGroupID: groupID,
		}
		if err := s.inviteeRepo.Create(ctx, invitee); err != nil {
			return nil, err
		}
		return invitee, nil
	}

	invitee.Name = strings.TrimSpace(input.Name)
	if input.Email != "" {
		invitee.Email = strings.ToLower(strings.TrimSpace(input.Email))
	}
	if secondaryPhone != "" {
		invitee.SecondaryPhone = secondaryPhone
	}
	if input.Title != "" {
		invitee.Title = input.Title
	}
	if input.Position != "" {
		invitee.Position = input.Position
	}
	if input.Company != "" {
		invitee.Company = input.Company
	}
	if input.Address != "" {
		invitee.Address = input.Address
	}
	if err := s.inviteeRepo.Update(ctx, invitee); err != nil {
		return nil, err
	}
	return invitee, nil
}

func (s *InviteeService) resolveInviter(ctx context.Context, name string, groupID *uint) (*models.Inviter, error) {
	inviter, err := s.inviterRepo.FindByNameInGroup(ctx, name, groupID)
	if err == nil {
		return inviter, nil
	}
	if err != repositories.ErrNotFound {
		return nil, err
	}
	inviter = &models.Inviter{Name: name, InviterGroupID: groupID}
	if err := s.inviterRepo.Create(ctx, inviter); err != nil {
		return nil, err
	}
	return inviter, nil
}

// canResubmit reddedilmiş kaydı kimler yeniden gönderebilir: kaydı giren,
// admin, veya kaydı giren organizatörse kaydın çözümlenen grubunun direktörü.
func canResubmit(ctx context.Context, users repositories.IUserRepository, actor *models.User, ei *models.EventInvitee) error {
	if actor.IsAdmin() || ei.InviterUserID == actor.ID {
		return nil
	}
	if actor.Role == models.RoleDirector && ei.InviterRole == models.RoleOrganizer &&
		actor.InviterGroupID != nil {
		if groupID := ResolveInviterGroup(ctx, users, ei); groupID != nil && *groupID == *actor.InviterGroupID {
			return nil
		}
	}
	return ErrInvitationResubmitDenied
}

// canAccessInvitation veri izolasyonu: admin her kaydı, diğerleri yalnızca
// kendi grubunun kayıtlarını görür.
func canAccessInvitation(actor *models.User, ei *models.EventInvitee) bool {
	if actor.IsAdmin() {
		return true
	}
	if actor.InviterGroupID == nil {
		return false
	}
	if ei.Invitee != nil && ei.Invitee.InviterGroupID != nil && *ei.Invitee.InviterGroupID == *actor.InviterGroupID {
		return true
	}
	return ei.InviterUserID == actor.ID
}

// UpdateInvitation onay bekleyen kaydın düzenlenebilir alanlarını değiştirir.
func (s *InviteeService) UpdateInvitation(ctx context.Context, actor *models.User, eventInviteeID uint, plusOne *int, notes *string, categoryID *uint, inviterName *string) (*models.EventInvitee, error) {
	if actor == nil {
		return nil, ErrInviteeForbidden
	}
	var updated *models.EventInvitee
	err := withTx(ctx, s.db, func(txCtx context.Context) error {
		ei, err := s.eiRepo.FindByID(txCtx, eventInviteeID)
		if err != nil {
			if err == repositories.ErrNotFound {
				return ErrInvitationNotFound
			}
			return err
		}
		if !canAccessInvitation(actor, ei) {
			return ErrInviteeForbidden
		}
		if ei.Status != models.StatusWaitingForApproval {
			return ErrInvitationNotEditable
		}
		before := *ei
		if plusOne != nil {
			if *plusOne < 0 {
				return ErrInviteeNegativePlusOne
			}
			ei.PlusOne = *plusOne
		}
		if notes != nil {
			ei.Notes = *notes
		}
		if categoryID != nil {
			ei.CategoryID = categoryID
		}
		if inviterName != nil {
			// Önceden yüklenmiş ilişki bırakılırsa gorm Save sırasında
			// inviter_id'yi ilişkiden geri türetir; ikisi birlikte güncellenir
			if name := strings.TrimSpace(*inviterName); name != "" {
				var groupID *uint
				if ei.Invitee != nil {
					groupID = ei.Invitee.InviterGroupID
				}
				inviter, err := s.resolveInviter(txCtx, name, groupID)
				if err != nil {
					return err
				}
				ei.InviterID = &inviter.ID
				ei.Inviter = inviter
			} else {
				ei.InviterID = nil
				ei.Inviter = nil
			}
		}
		if err := s.eiRepo.Update(txCtx, ei); err != nil {
			return err
		}
		updated = ei
		return auditEntry(txCtx, s.auditRepo, &actor.ID, "invitation_updated", "event_invitees",
			ei.ID, before, ei, "")
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveFromEvent davetiye kaydını siler. Bitmiş etkinliğin kayıtları
// raporlama için korunur.
func (s *InviteeService) RemoveFromEvent(ctx context.Context, actor *models.User, eventInviteeID uint, ip string) error {
	if actor == nil {
		return ErrInviteeForbidden
	}
	var removed *models.EventInvitee
	err := withTx(ctx, s.db, func(txCtx context.Context) error {
		ei, err := s.eiRepo.FindByID(txCtx, eventInviteeID)
		if err != nil {
			if err == repositories.ErrNotFound {
				return ErrInvitationNotFound
			}
			return err
		}
		if !canAccessInvitation(actor, ei) {
			return ErrInviteeForbidden
		}
		if ei.Event != nil && ei.Event.Status == models.EventStatusEnded {
			return ErrInvitationEventEnded
		}
		// Organizatör yalnızca kendi girdiği bekleyen kaydı geri çekebilir
		if !actor.IsAdmin() && actor.Role != models.RoleDirector {
			if ei.InviterUserID != actor.ID || ei.Status != models.StatusWaitingForApproval {
				return ErrInviteeForbidden
			}
		}
		if err := s.eiRepo.Delete(txCtx, ei); err != nil {
			return err
		}
		removed = ei
		return auditEntry(txCtx, s.auditRepo, &actor.ID, "invitation_removed", "event_invitees",
			ei.ID, ei, nil, ip)
	})
	if err != nil {
		return err
	}
	if removed.Status == models.StatusApproved {
		go s.notification.NotifyInvitationCancelled(context.WithoutCancel(ctx), removed, actor)
	}
	return nil
}

func (s *InviteeService) GetInvitation(ctx context.Context, actor *models.User, eventInviteeID uint) (*models.EventInvitee, error) {
	if actor == nil {
		return nil, ErrInviteeForbidden
	}
	ei, err := s.eiRepo.FindByID(ctx, eventInviteeID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	if !canAccessInvitation(actor, ei) {
		return nil, ErrInviteeForbidden
	}
	return ei, nil
}

// ListForEvent etkinliğin davetiye listesi; admin dışındaki roller kendi
// grubuna daraltılır. Sayfalama filtrelerden gelir, toplam sayı sayfadan
// bağımsız döner.
func (s *InviteeService) ListForEvent(ctx context.Context, actor *models.User, filters repositories.InvitationFilters) ([]models.EventInvitee, int64, error) {
	if actor == nil {
		return nil, 0, ErrInviteeForbidden
	}
	if !actor.IsAdmin() {
		if actor.InviterGroupID == nil {
			return []models.EventInvitee{}, 0, nil
		}
		filters.InviterGroupID = *actor.InviterGroupID
	}
	total, err := s.eiRepo.CountForEvent(ctx, filters)
	if err != nil {
		return nil, 0, err
	}
	list, err := s.eiRepo.FindForEvent(ctx, filters)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *InviteeService) SearchInvitees(ctx context.Context, actor *models.User, q string, limit int) ([]models.Invitee, error) {
	if actor == nil {
		return nil, ErrInviteeForbidden
	}
	var groupID *uint
	if !actor.IsAdmin() {
		if actor.InviterGroupID == nil {
			return []models.Invitee{}, nil
		}
		groupID = actor.InviterGroupID
	}
	return s.inviteeRepo.Search(ctx, q, groupID, limit)
}

// DeleteInvitee kontağı siler; herhangi bir etkinlik geçmişi varsa korunur.
func (s *InviteeService) DeleteInvitee(ctx context.Context, actor *models.User, inviteeID uint) error {
	if actor == nil || (!actor.IsAdmin() && actor.Role != models.RoleDirector) {
		return ErrInviteeForbidden
	}
	return withTx(ctx, s.db, func(txCtx context.Context) error {
		invitee, err := s.inviteeRepo.FindByID(txCtx, inviteeID)
		if err != nil {
			if err == repositories.ErrNotFound {
				return ErrInviteeNotFound
			}
			return err
		}
		if !actor.IsAdmin() {
			if actor.InviterGroupID == nil || invitee.InviterGroupID == nil ||
				*invitee.InviterGroupID != *actor.InviterGroupID {
				return ErrInviteeForbidden
			}
		}
		history, err := s.eiRepo.FindByInvitee(txCtx, inviteeID)
		if err != nil {
			return err
		}
		// Bitmiş etkinliklerin kayıtları raporlama için korunur; aktif
		// etkinliklerden çıkarılır. Kontak ancak hiçbir kayıt kalmazsa silinir.
		ended := 0
		for i := range history {
			ei := &history[i]
			if ei.Event != nil && ei.Event.Status == models.EventStatusEnded {
				ended++
				continue
			}
			if err := s.eiRepo.Delete(txCtx, ei); err != nil {
				return err
			}
		}
		if ended == 0 {
			if err := s.inviteeRepo.Delete(txCtx, invitee); err != nil {
				return err
			}
		}
		return auditEntry(txCtx, s.auditRepo, &actor.ID, "invitee_deleted", "invitees", inviteeID, invitee, nil, "")
	})
}

var _ IInviteeService = (*InviteeService)(nil)
