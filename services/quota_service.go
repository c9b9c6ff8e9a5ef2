package services

import (
	"context"

	"davetli.app/configs"
	"davetli.app/models"
	"davetli.app/repositories"

	"gorm.io/gorm"
)

// QuotaServiceError özel servis hataları
type QuotaServiceError string

func (e QuotaServiceError) Error() string { return string(e) }

const (
	ErrQuotaExceeded      QuotaServiceError = "grup kontenjanı dolu"
	ErrQuotaNegative      QuotaServiceError = "kontenjan negatif olamaz"
	ErrQuotaForbidden     QuotaServiceError = "kontenjan yönetimi için yetkiniz yok"
	ErrQuotaEventNotFound QuotaServiceError = "etkinlik bulunamadı"
	ErrQuotaGroupNotFound QuotaServiceError = "davet eden grup bulunamadı"
)

// QuotaStatus bir (etkinlik, grup) çiftinin anlık kontenjan görünümü.
// Quota nil ise sınırsızdır ve Remaining anlamsızdır.
type QuotaStatus struct {
	EventID        uint  `json:"event_id"`
	InviterGroupID uint  `json:"inviter_group_id"`
	Quota          *int  `json:"quota"`
	Used           int64 `json:"used"`
	Remaining      *int  `json:"remaining"`
}

// IQuotaService kontenjan yönetimi ve denetimi.
type IQuotaService interface {
	CheckQuota(ctx context.Context, eventID, groupID uint) (*QuotaStatus, error)
	SetQuota(ctx context.Context, actor *models.User, eventID, groupID uint, quota *int) error
	RemoveQuota(ctx context.Context, actor *models.User, eventID, groupID uint) error
	GetQuotasForEvent(ctx context.Context, eventID uint) ([]QuotaStatus, error)
}

// QuotaService IQuotaService arayüzünü uygular.
type QuotaService struct {
	repo      repositories.IEventGroupQuotaRepository
	eiRepo    repositories.IEventInviteeRepository
	eventRepo repositories.IEventRepository
	groupRepo repositories.IInviterGroupRepository
	auditRepo repositories.IAuditLogRepository
	db        *gorm.DB
}

// NewQuotaService yeni bir QuotaService örneği oluşturur.
func NewQuotaService() IQuotaService {
	return &QuotaService{
		repo:      repositories.NewEventGroupQuotaRepository(),
		eiRepo:    repositories.NewEventInviteeRepository(),
		eventRepo: repositories.NewEventRepository(),
		groupRepo: repositories.NewInviterGroupRepository(),
		auditRepo: repositories.NewAuditLogRepository(),
		db:        configs.GetDB(),
	}
}

// CheckQuota kullanımı canlı sayarak anlık durumu döndürür. Kullanım,
// reddedilmemiş (waiting_for_approval + approved) davetiye sayısıdır.
func (s *QuotaService) CheckQuota(ctx context.Context, eventID, groupID uint) (*QuotaStatus, error) {
	used, err := s.eiRepo.CountGroupUsage(ctx, eventID, groupID)
	if err != nil {
		return nil, err
	}
	status := &QuotaStatus{EventID: eventID, InviterGroupID: groupID, Used: used}

	q, err := s.repo.Find(ctx, eventID, groupID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return status, nil // tanımsız kontenjan = sınırsız
		}
		return nil, err
	}
	status.Quota = q.Quota
	if q.Quota != nil {
		remaining := *q.Quota - int(used)
		if remaining < 0 {
			remaining = 0
		}
		status.Remaining = &remaining
	}
	return status, nil
}

// SetQuota kontenjanı yazar; nil sınırsız demektir. Mevcut kullanımın
// altına çekmek serbesttir: eldeki kayıtlar korunur, yenileri engellenir.
func (s *QuotaService) SetQuota(ctx context.Context, actor *models.User, eventID, groupID uint, quota *int) error {
	if actor == nil || !actor.IsAdmin() {
		return ErrQuotaForbidden
	}
	if quota != nil && *quota < 0 {
		return ErrQuotaNegative
	}
	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		if err == repositories.ErrNotFound {
			return ErrQuotaEventNotFound
		}
		return err
	}
	if _, err := s.groupRepo.FindByID(ctx, groupID); err != nil {
		if err == repositories.ErrNotFound {
			return ErrQuotaGroupNotFound
		}
		return err
	}

	return withTx(ctx, s.db, func(txCtx context.Context) error {
		old, _ := s.repo.Find(txCtx, eventID, groupID)
		record := &models.EventGroupQuota{EventID: eventID, InviterGroupID: groupID, Quota: quota}
		if err := s.repo.Upsert(txCtx, record); err != nil {
			return err
		}
		return auditEntry(txCtx, s.auditRepo, &actor.ID, "quota_set", "event_group_quotas", record.ID,
			old, record, "")
	})
}

// RemoveQuota kaydı siler; grup sınırsıza döner.
func (s *QuotaService) RemoveQuota(ctx context.Context, actor *models.User, eventID, groupID uint) error {
	if actor == nil || !actor.IsAdmin() {
		return ErrQuotaForbidden
	}
	return withTx(ctx, s.db, func(txCtx context.Context) error {
		old, err := s.repo.Find(txCtx, eventID, groupID)
		if err != nil {
			if err == repositories.ErrNotFound {
				return nil // silinecek kayıt yok
			}
			return err
		}
		if err := s.repo.Delete(txCtx, eventID, groupID); err != nil {
			return err
		}
		return auditEntry(txCtx, s.auditRepo, &actor.ID, "quota_removed", "event_group_quotas", old.ID, old, nil, "")
	})
}

// GetQuotasForEvent etkinliğin tanımlı bütün kontenjanlarını kullanım
// sayılarıyla döndürür.
func (s *QuotaService) GetQuotasForEvent(ctx context.Context, eventID uint) ([]QuotaStatus, error) {
	quotas, err := s.repo.FindForEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	out := make([]QuotaStatus, 0, len(quotas))
	for _, q := range quotas {
		status, err := s.CheckQuota(ctx, eventID, q.InviterGroupID)
		if err != nil {
			return nil, err
		}
		out = append(out, *status)
	}
	return out, nil
}

var _ IQuotaService = (*QuotaService)(nil)
