package services

import (
	"context"
	"strings"

	"davetli.app/configs"
	"davetli.app/configs/configslog"
	"davetli.app/models"
	"davetli.app/pkg/eventtime"
	"davetli.app/repositories"

	"gorm.io/gorm"
)

// ApprovalServiceError özel servis hataları
type ApprovalServiceError string

func (e ApprovalServiceError) Error() string { return string(e) }

const (
	ErrApprovalForbidden      ApprovalServiceError = "onay işlemi için yetkiniz yok"
	ErrApprovalNotPending     ApprovalServiceError = "kayıt onay beklemiyor"
	ErrApprovalNotApproved    ApprovalServiceError = "yalnızca onaylı kayıt iptal edilebilir"
	ErrApprovalNotRejected    ApprovalServiceError = "yalnızca reddedilmiş kayıt yeniden gönderilebilir"
	ErrApprovalAfterCheckin   ApprovalServiceError = "check-in yapılmış kayıt iptal edilemez"
	ErrApprovalRecordNotFound ApprovalServiceError = "davetiye kaydı bulunamadı"
	ErrApprovalReasonRequired ApprovalServiceError = "iptal gerekçesi zorunludur"
)

// DecisionResult toplu kararın tek kaydına ait sonuç.
type DecisionResult struct {
	EventInviteeID uint   `json:"event_invitee_id"`
	OK             bool   `json:"ok"`
	Error          string `json:"error,omitempty"`
}

// DecisionSummary toplu kararın özeti; kısmi başarı normaldir.
type DecisionSummary struct {
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Results   []DecisionResult `json:"results"`
}

// IApprovalService onay/red/iptal/yeniden gönderim akışları.
type IApprovalService interface {
	Approve(ctx context.Context, actor *models.User, ids []uint, notes, ip string) *DecisionSummary
	Reject(ctx context.Context, actor *models.User, ids []uint, notes, ip string) *DecisionSummary
	Cancel(ctx context.Context, actor *models.User, ids []uint, notes, ip string) (*DecisionSummary, error)
	Resubmit(ctx context.Context, actor *models.User, eventInviteeID uint, ip string) (*models.EventInvitee, error)
	ListPending(ctx context.Context, actor *models.User, eventID uint) ([]models.EventInvitee, error)
}

// ApprovalService IApprovalService arayüzünü uygular.
type ApprovalService struct {
	eiRepo       repositories.IEventInviteeRepository
	quotaRepo    repositories.IEventGroupQuotaRepository
	auditRepo    repositories.IAuditLogRepository
	userRepo     repositories.IUserRepository
	notification INotificationService
	db           *gorm.DB
	clock        eventtime.Clock
}

// NewApprovalService yeni bir ApprovalService örneği oluşturur.
func NewApprovalService() IApprovalService {
	return &ApprovalService{
		eiRepo:       repositories.NewEventInviteeRepository(),
		quotaRepo:    repositories.NewEventGroupQuotaRepository(),
		auditRepo:    repositories.NewAuditLogRepository(),
		userRepo:     repositories.NewUserRepository(),
		notification: NewNotificationService(),
		db:           configs.GetDB(),
		clock:        eventtime.System(),
	}
}

// ResolveInviterGroup kaydın karar grubunu belirler: davet eden kişi
// (Inviter) atanmışsa onun grubu, yoksa kaydı giren kullanıcının grubu.
// Admin adına girişlerde kontak grubu ile kaydı girenin grubu ayrışabilir;
// yetki her zaman bu çift adımlı çözümlemeye göre verilir.
func ResolveInviterGroup(ctx context.Context, users repositories.IUserRepository, ei *models.EventInvitee) *uint {
	if ei.Inviter != nil && ei.Inviter.InviterGroupID != nil {
		return ei.Inviter.InviterGroupID
	}
	submitter, err := users.FindByID(ctx, ei.InviterUserID)
	if err != nil {
		return nil
	}
	return submitter.InviterGroupID
}

// canDecide karar yetkisi: admin her kaydı, direktör yalnızca kendi
// grubunun kayıtlarını karara bağlar.
func (s *ApprovalService) canDecide(ctx context.Context, actor *models.User, ei *models.EventInvitee) bool {
	if actor.IsAdmin() {
		return true
	}
	if actor.Role != models.RoleDirector || actor.InviterGroupID == nil {
		return false
	}
	groupID := ResolveInviterGroup(ctx, s.userRepo, ei)
	return groupID != nil && *groupID == *actor.InviterGroupID
}

// decide tek kaydı kilitleyip karar uygular; toplu akışın çekirdeği.
func (s *ApprovalService) decide(ctx context.Context, actor *models.User, id uint, approve bool, notes, ip string) error {
	var decided *models.EventInvitee
	err := withTx(ctx, s.db, func(txCtx context.Context) error {
		ei, err := s.eiRepo.FindByID(txCtx, id)
		if err != nil {
			if err == repositories.ErrNotFound {
				return ErrApprovalRecordNotFound
			}
			return err
		}
		if !s.canDecide(txCtx, actor, ei) {
			return ErrApprovalForbidden
		}
		if ei.Status != models.StatusWaitingForApproval {
			return ErrApprovalNotPending
		}
		before := *ei
		now := s.clock.Now()
		action := "invitation_approved"
		if approve {
			ei.Approve(actor.ID, actor.Role, notes, now)
		} else {
			ei.Reject(actor.ID, actor.Role, notes, now)
			action = "invitation_rejected"
		}
		if err := s.eiRepo.Update(txCtx, ei); err != nil {
			return err
		}
		decided = ei
		return auditEntry(txCtx, s.auditRepo, &actor.ID, action, "event_invitees", ei.ID, before, ei, ip)
	})
	if err != nil {
		return err
	}
	go s.notification.NotifyInvitationDecision(context.WithoutCancel(ctx), decided, actor)
	return nil
}

// bulk her kaydı kendi transaction'ında işler; bir kaydın hatası
// diğerlerini geri almaz.
func (s *ApprovalService) bulk(ctx context.Context, actor *models.User, ids []uint, approve bool, notes, ip string) *DecisionSummary {
	summary := &DecisionSummary{Results: make([]DecisionResult, 0, len(ids))}
	for _, id := range ids {
		result := DecisionResult{EventInviteeID: id, OK: true}
		if err := s.decide(ctx, actor, id, approve, notes, ip); err != nil {
			result.OK = false
			result.Error = err.Error()
			summary.Failed++
		} else {
			summary.Succeeded++
		}
		summary.Results = append(summary.Results, result)
	}
	configslog.SLog.Infof("Toplu karar tamamlandı: başarılı=%d başarısız=%d", summary.Succeeded, summary.Failed)
	return summary
}

func (s *ApprovalService) Approve(ctx context.Context, actor *models.User, ids []uint, notes, ip string) *DecisionSummary {
	return s.bulk(ctx, actor, ids, true, notes, ip)
}

func (s *ApprovalService) Reject(ctx context.Context, actor *models.User, ids []uint, notes, ip string) *DecisionSummary {
	return s.bulk(ctx, actor, ids, false, notes, ip)
}

// Cancel onaylı kayıtları reddedilmişe çevirir; kontenjan yerleri boşalır.
// Gerekçe zorunludur. Approve/Reject gibi toplu çalışır, kısmi başarı
// normaldir.
func (s *ApprovalService) Cancel(ctx context.Context, actor *models.User, ids []uint, notes, ip string) (*DecisionSummary, error) {
	if strings.TrimSpace(notes) == "" {
		return nil, ErrApprovalReasonRequired
	}
	summary := &DecisionSummary{Results: make([]DecisionResult, 0, len(ids))}
	for _, id := range ids {
		result := DecisionResult{EventInviteeID: id, OK: true}
		if err := s.cancelOne(ctx, actor, id, notes, ip); err != nil {
			result.OK = false
			result.Error = err.Error()
			summary.Failed++
		} else {
			summary.Succeeded++
		}
		summary.Results = append(summary.Results, result)
	}
	configslog.SLog.Infof("Toplu iptal tamamlandı: başarılı=%d başarısız=%d", summary.Succeeded, summary.Failed)
	return summary, nil
}

// cancelOne tek onaylı kaydı iptal eder. Katılım kodu ve portal alanları
// temizlenir, check-in yapılmışsa iptal mümkün değildir.
func (s *ApprovalService) cancelOne(ctx context.Context, actor *models.User, eventInviteeID uint, notes, ip string) error {
	var cancelled *models.EventInvitee
	err := withTx(ctx, s.db, func(txCtx context.Context) error {
		ei, err := s.eiRepo.FindByID(txCtx, eventInviteeID)
		if err != nil {
			if err == repositories.ErrNotFound {
				return ErrApprovalRecordNotFound
			}
			return err
		}
		if !s.canDecide(txCtx, actor, ei) {
			return ErrApprovalForbidden
		}
		if ei.Status != models.StatusApproved {
			return ErrApprovalNotApproved
		}
		if ei.CheckedIn {
			return ErrApprovalAfterCheckin
		}
		before := *ei
		ei.Reject(actor.ID, actor.Role, notes, s.clock.Now())
		ei.AttendanceCode = nil
		ei.CodeGeneratedAt = nil
		ei.UndoInvitationSent()
		ei.PortalAccessedAt = nil
		ei.AttendanceConfirmed = nil
		ei.ConfirmedAt = nil
		ei.ConfirmedGuests = nil
		if err := s.eiRepo.Update(txCtx, ei); err != nil {
			return err
		}
		cancelled = ei
		return auditEntry(txCtx, s.auditRepo, &actor.ID, "invitation_cancelled", "event_invitees",
			ei.ID, before, ei, ip)
	})
	if err != nil {
		return err
	}
	go s.notification.NotifyInvitationCancelled(context.WithoutCancel(ctx), cancelled, actor)
	return nil
}

// Resubmit reddedilmiş kaydı yeniden onay kuyruğuna alır.
func (s *ApprovalService) Resubmit(ctx context.Context, actor *models.User, eventInviteeID uint, ip string) (*models.EventInvitee, error) {
	var resubmitted *models.EventInvitee
	err := withTx(ctx, s.db, func(txCtx context.Context) error {
		ei, err := s.eiRepo.FindByID(txCtx, eventInviteeID)
		if err != nil {
			if err == repositories.ErrNotFound {
				return ErrApprovalRecordNotFound
			}
			return err
		}
		if ei.Status != models.StatusRejected {
			return ErrApprovalNotRejected
		}
		if err := canResubmit(txCtx, s.userRepo, actor, ei); err != nil {
			return err
		}
		if ei.Event != nil && !ei.Event.CanAddInvitees() {
			return ErrInviteeEventClosed
		}
		// İlk gönderimdeki telefon çakışması koruması yeniden işletilir:
		// red sonrası başka grup aynı numarayı eklemiş olabilir
		if !actor.IsAdmin() && ei.Invitee != nil && ei.Invitee.InviterGroupID != nil {
			conflict, err := s.eiRepo.FindCrossGroupPhoneConflict(txCtx, ei.EventID, ei.Invitee.Phone, *ei.Invitee.InviterGroupID)
			if err != nil && err != repositories.ErrNotFound {
				return err
			}
			if conflict != nil {
				return ErrInviteePhoneConflict
			}
		}
		// Red, kontenjan yerini boşaltmıştı; yeniden gönderim yeri geri alır
		if !actor.IsAdmin() && ei.Invitee != nil && ei.Invitee.InviterGroupID != nil {
			groupID := *ei.Invitee.InviterGroupID
			quota, err := s.quotaRepo.Find(txCtx, ei.EventID, groupID)
			if err != nil && err != repositories.ErrNotFound {
				return err
			}
			if quota != nil && quota.Quota != nil {
				used, err := s.eiRepo.CountGroupUsage(txCtx, ei.EventID, groupID)
				if err != nil {
					return err
				}
				if used >= int64(*quota.Quota) {
					return ErrQuotaExceeded
				}
			}
		}
		before := *ei
		ei.Resubmit(s.clock.Now())
		if err := s.eiRepo.Update(txCtx, ei); err != nil {
			return err
		}
		resubmitted = ei
		return auditEntry(txCtx, s.auditRepo, &actor.ID, "invitation_resubmitted", "event_invitees",
			ei.ID, before, ei, ip)
	})
	if err != nil {
		return nil, err
	}
	go s.notification.NotifyInvitationSubmitted(context.WithoutCancel(ctx), resubmitted, actor)
	return resubmitted, nil
}

// ListPending onay bekleyenler; direktör kendi grubuna daraltılır.
func (s *ApprovalService) ListPending(ctx context.Context, actor *models.User, eventID uint) ([]models.EventInvitee, error) {
	if actor == nil {
		return nil, ErrApprovalForbidden
	}
	filters := repositories.InvitationFilters{EventID: eventID}
	switch {
	case actor.IsAdmin():
	case actor.Role == models.RoleDirector && actor.InviterGroupID != nil:
		filters.InviterGroupID = *actor.InviterGroupID
	case actor.Role == models.RoleOrganizer:
		filters.InviterUserID = actor.ID
	default:
		return nil, ErrApprovalForbidden
	}
	return s.eiRepo.FindPending(ctx, filters)
}

var _ IApprovalService = (*ApprovalService)(nil)
