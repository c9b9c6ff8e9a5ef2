package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"davetli.app/configs"
	"davetli.app/configs/configslog"
	"davetli.app/models"
	"davetli.app/pkg/codegen"
	"davetli.app/pkg/eventtime"
	"davetli.app/repositories"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EventServiceError özel servis hataları
type EventServiceError string

func (e EventServiceError) Error() string { return string(e) }

const (
	ErrEventNotFound        EventServiceError = "etkinlik bulunamadı"
	ErrEventInvalidInput    EventServiceError = "geçersiz etkinlik verisi"
	ErrEventNameRequired    EventServiceError = "etkinlik adı zorunludur"
	ErrEventInvalidDates    EventServiceError = "bitiş tarihi başlangıçtan sonra olmalıdır"
	ErrEventForbidden       EventServiceError = "bu işlem için yetkiniz yok"
	ErrEventInvalidStatus   EventServiceError = "geçersiz etkinlik durumu"
	ErrEventCodeGenFailed   EventServiceError = "benzersiz etkinlik kodu üretilemedi"
	ErrEventPinNotSet       EventServiceError = "etkinlik için PIN tanımlı değil"
	ErrEventNegativeHours   EventServiceError = "otomatik kapanma süresi negatif olamaz"
	ErrEventGroupNotFound   EventServiceError = "davet eden grup bulunamadı"
	ErrEventDeletionBlocked EventServiceError = "davetli kaydı olan etkinlik silinemez"
)

// EventInput etkinlik oluşturma/güncelleme girdisi.
type EventInput struct {
	Name                          string
	StartDate                     time.Time
	EndDate                       time.Time
	Venue                         string
	Description                   string
	IsAllGroups                   bool
	GroupIDs                      []uint
	CheckinPinAutoDeactivateHours *int
}

// StatusRefreshResult toplu durum yenilemesinin sayaçları.
type StatusRefreshResult struct {
	MarkedOngoing int64 `json:"marked_ongoing"`
	MarkedEnded   int64 `json:"marked_ended"`
}

// IEventService etkinlik yaşam döngüsü işlemleri.
type IEventService interface {
	CreateEvent(ctx context.Context, actor *models.User, input EventInput) (*models.Event, error)
	GetEventByID(ctx context.Context, id uint) (*models.Event, error)
	GetEventByCode(ctx context.Context, code string) (*models.Event, error)
	GetVisibleEvents(ctx context.Context, actor *models.User) ([]models.Event, error)
	UpdateEvent(ctx context.Context, actor *models.User, id uint, input EventInput) (*models.Event, error)
	SetEventStatus(ctx context.Context, actor *models.User, id uint, status models.EventStatus) error
	DeleteEvent(ctx context.Context, actor *models.User, id uint) error
	RefreshAllStatuses(ctx context.Context) (*StatusRefreshResult, error)
	GenerateCheckinPin(ctx context.Context, actor *models.User, eventID uint) (string, error)
	GetCheckinPin(ctx context.Context, actor *models.User, eventID uint) (string, error)
	SetCheckinPinActive(ctx context.Context, actor *models.User, eventID uint, active bool) error
	SetPinAutoDeactivateHours(ctx context.Context, actor *models.User, eventID uint, hours *int) error
}

// EventService IEventService arayüzünü uygular.
type EventService struct {
	repo         repositories.IEventRepository
	groupRepo    repositories.IInviterGroupRepository
	auditRepo    repositories.IAuditLogRepository
	notification INotificationService
	db           *gorm.DB
	clock        eventtime.Clock
}

// NewEventService yeni bir EventService örneği oluşturur.
func NewEventService() IEventService {
	return &EventService{
		repo:         repositories.NewEventRepository(),
		groupRepo:    repositories.NewInviterGroupRepository(),
		auditRepo:    repositories.NewAuditLogRepository(),
		notification: NewNotificationService(),
		db:           configs.GetDB(),
		clock:        eventtime.System(),
	}
}

// NewEventServiceWithClock test için sabit saatli servis.
func NewEventServiceWithClock(clock eventtime.Clock) *EventService {
	s := NewEventService().(*EventService)
	s.clock = clock
	return s
}

func validateEventInput(input EventInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrEventNameRequired
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return fmt.Errorf("%w: başlangıç ve bitiş tarihi zorunludur", ErrEventInvalidInput)
	}
	if !input.EndDate.After(input.StartDate) {
		return ErrEventInvalidDates
	}
	if input.CheckinPinAutoDeactivateHours != nil && *input.CheckinPinAutoDeactivateHours < 0 {
		return ErrEventNegativeHours
	}
	return nil
}

// generateUniqueCode çakışmayan etkinlik kodu üretir; az sayıda deneme
// yeterlidir, yine de tekrar dener.
func (s *EventService) generateUniqueCode(ctx context.Context) (string, error) {
	var code string
	backoff := retry.WithMaxRetries(10, retry.NewConstant(time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		candidate, err := codegen.EventCode(6)
		if err != nil {
			return err
		}
		exists, err := s.repo.CodeExists(ctx, candidate)
		if err != nil {
			return err
		}
		if exists {
			return retry.RetryableError(fmt.Errorf("kod çakışması: %s", candidate))
		}
		code = candidate
		return nil
	})
	if err != nil {
		return "", ErrEventCodeGenFailed
	}
	return code, nil
}

func (s *EventService) loadGroups(ctx context.Context, ids []uint) ([]models.InviterGroup, error) {
	groups := make([]models.InviterGroup, 0, len(ids))
	for _, id := range ids {
		g, err := s.groupRepo.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%w: %d", ErrEventGroupNotFound, id)
		}
		groups = append(groups, *g)
	}
	return groups, nil
}

// CreateEvent yeni etkinlik oluşturur. Yalnızca admin.
func (s *EventService) CreateEvent(ctx context.Context, actor *models.User, input EventInput) (*models.Event, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, ErrEventForbidden
	}
	if err := validateEventInput(input); err != nil {
		return nil, err
	}

	var event *models.Event
	err := withTx(ctx, s.db, func(txCtx context.Context) error {
		repo := s.repo
		code, err := s.generateUniqueCode(txCtx)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		event = &models.Event{
			Name:                          strings.TrimSpace(input.Name),
			Code:                          code,
			StartDate:                     input.StartDate,
			EndDate:                       input.EndDate,
			Venue:                         input.Venue,
			Description:                   input.Description,
			IsAllGroups:                   input.IsAllGroups,
			CheckinPinAutoDeactivateHours: input.CheckinPinAutoDeactivateHours,
			CreatedByUserID:               actor.ID,
		}
		event.Status = event.ComputeStatus(now)
		if err := repo.Create(txCtx, event); err != nil {
			return err
		}
		if !input.IsAllGroups && len(input.GroupIDs) > 0 {
			groups, err := s.loadGroups(txCtx, input.GroupIDs)
			if err != nil {
				return err
			}
			if err := repo.ReplaceGroups(txCtx, event, groups); err != nil {
				return err
			}
		}
		return auditEntry(txCtx, s.auditRepo, &actor.ID, "event_created", "events", event.ID, nil, event, "")
	})
	if err != nil {
		return nil, err
	}

	if !input.IsAllGroups && len(input.GroupIDs) > 0 {
		go s.notification.NotifyGroupAssignment(context.WithoutCancel(ctx), event, input.GroupIDs, &actor.ID)
	}
	configslog.SLog.Infof("Etkinlik oluşturuldu: %s (%s)", event.Name, event.Code)
	return s.repo.FindByID(ctx, event.ID)
}

func (s *EventService) GetEventByID(ctx context.Context, id uint) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (s *EventService) GetEventByCode(ctx context.Context, code string) (*models.Event, error) {
	event, err := s.repo.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

// GetVisibleEvents admin için tümü, diğer roller için grubuna atanmış
// aktif etkinlikler.
func (s *EventService) GetVisibleEvents(ctx context.Context, actor *models.User) ([]models.Event, error) {
	if actor == nil {
		return nil, ErrEventForbidden
	}
	if actor.IsAdmin() {
		return s.repo.FindAll(ctx)
	}
	if actor.InviterGroupID == nil {
		return []models.Event{}, nil
	}
	return s.repo.FindActiveForGroup(ctx, *actor.InviterGroupID)
}

// UpdateEvent alanları ve grup atamalarını günceller. Yalnızca admin.
// Yeni atanan gruplara bildirim gider.
func (s *EventService) UpdateEvent(ctx context.Context, actor *models.User, id uint, input EventInput) (*models.Event, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, ErrEventForbidden
	}
	if err := validateEventInput(input); err != nil {
		return nil, err
	}

	var newGroupIDs []uint
	err := withTx(ctx, s.db, func(txCtx context.Context) error {
		event, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			if err == repositories.ErrNotFound {
				return ErrEventNotFound
			}
			return err
		}
		before := *event

		existing := make(map[uint]bool, len(event.InviterGroups))
		for _, g := range event.InviterGroups {
			existing[g.ID] = true
		}

		event.Name = strings.TrimSpace(input.Name)
		event.StartDate = input.StartDate
		event.EndDate = input.EndDate
		event.Venue = input.Venue
		event.Description = input.Description
		event.IsAllGroups = input.IsAllGroups
		event.CheckinPinAutoDeactivateHours = input.CheckinPinAutoDeactivateHours
		// Tarih değişiklikleri override olmayan durumu yeniden hesaplatır
		if !event.Status.IsManualOverride() {
			event.Status = event.ComputeStatus(s.clock.Now())
		}

		if err := s.repo.Update(txCtx, event); err != nil {
			return err
		}

		if !input.IsAllGroups {
			groups, err := s.loadGroups(txCtx, input.GroupIDs)
			if err != nil {
				return err
			}
			if err := s.repo.ReplaceGroups(txCtx, event, groups); err != nil {
				return err
			}
			for _, gid := range input.GroupIDs {
				if !existing[gid] {
					newGroupIDs = append(newGroupIDs, gid)
				}
			}
		}
		return auditEntry(txCtx, s.auditRepo, &actor.ID, "event_updated", "events", event.ID, before, event, "")
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(newGroupIDs) > 0 {
		go s.notification.NotifyGroupAssignment(context.WithoutCancel(ctx), updated, newGroupIDs, &actor.ID)
	}
	return updated, nil
}

// SetEventStatus manuel durum ataması. cancelled/on_hold yapışkandır;
// upcoming'e geri alma, tarihlere göre yeniden hesaplanır.
func (s *EventService) SetEventStatus(ctx context.Context, actor *models.User, id uint, status models.EventStatus) error {
	if actor == nil || !actor.IsAdmin() {
		return ErrEventForbidden
	}
	if !status.Valid() {
		return ErrEventInvalidStatus
	}

	var changed *models.Event
	err := withTx(ctx, s.db, func(txCtx context.Context) error {
		event, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			if err == repositories.ErrNotFound {
				return ErrEventNotFound
			}
			return err
		}
		oldStatus := event.Status
		if status.IsManualOverride() {
			event.Status = status
		} else {
			// Override kaldırıldı: takvim ne diyorsa o
			event.Status = status
			event.Status = event.ComputeStatus(s.clock.Now())
		}
		if event.Status == oldStatus {
			return nil
		}
		if err := s.repo.UpdateFields(txCtx, id, map[string]interface{}{"status": event.Status}); err != nil {
			return err
		}
		changed = event
		return auditEntry(txCtx, s.auditRepo, &actor.ID, "event_status_changed", "events", id,
			map[string]interface{}{"status": oldStatus},
			map[string]interface{}{"status": event.Status}, "")
	})
	if err != nil {
		return err
	}
	if changed != nil {
		go s.notification.NotifyEventStatusChanged(context.WithoutCancel(ctx), changed, changed.Status)
	}
	return nil
}

// DeleteEvent davetli kaydı olmayan etkinliği siler. Yalnızca admin.
func (s *EventService) DeleteEvent(ctx context.Context, actor *models.User, id uint) error {
	if actor == nil || !actor.IsAdmin() {
		return ErrEventForbidden
	}
	return withTx(ctx, s.db, func(txCtx context.Context) error {
		event, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			if err == repositories.ErrNotFound {
				return ErrEventNotFound
			}
			return err
		}
		eiRepo := repositories.NewEventInviteeRepository()
		count, err := eiRepo.CountForEvent(txCtx, repositories.InvitationFilters{EventID: id})
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrEventDeletionBlocked
		}
		if err := s.repo.Delete(txCtx, event); err != nil {
			return err
		}
		return auditEntry(txCtx, s.auditRepo, &actor.ID, "event_deleted", "events", id, event, nil, "")
	})
}

// RefreshAllStatuses takvimi geçmiş etkinlikleri iki toplu güncellemeyle
// ileri taşır. Manuel override'lara dokunulmaz. Bildirim diff'i güncelleme
// ÖNCESİ alınan ID listeleriyle kurulur.
func (s *EventService) RefreshAllStatuses(ctx context.Context) (*StatusRefreshResult, error) {
	now := s.clock.Now()

	var result StatusRefreshResult
	var toOngoing, toEnded []uint
	err := withTx(ctx, s.db, func(txCtx context.Context) error {
		var err error
		toOngoing, toEnded, err = s.repo.FindTransitioningIDs(txCtx, now)
		if err != nil {
			return err
		}
		// ended sorgusu upcoming satırları da kapsar; önce ended
		result.MarkedEnded, err = s.repo.BulkMarkEnded(txCtx, now)
		if err != nil {
			return err
		}
		result.MarkedOngoing, err = s.repo.BulkMarkOngoing(txCtx, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.MarkedOngoing > 0 || result.MarkedEnded > 0 {
		configslog.Log.Info("Etkinlik durumları yenilendi",
			zap.Int64("ongoing", result.MarkedOngoing), zap.Int64("ended", result.MarkedEnded))
		go s.notifyTransitions(context.WithoutCancel(ctx), toOngoing, toEnded)
	}
	return &result, nil
}

func (s *EventService) notifyTransitions(ctx context.Context, toOngoing, toEnded []uint) {
	notify := func(ids []uint, status models.EventStatus) {
		for _, id := range ids {
			event, err := s.repo.FindByID(ctx, id)
			if err != nil {
				continue
			}
			// ended sorgusu upcoming→ended sıçramalarını da kapsadığından
			// stored durumu baz alınır
			if event.Status == status {
				s.notification.NotifyEventStatusChanged(ctx, event, status)
			}
		}
	}
	notify(toEnded, models.EventStatusEnded)
	notify(toOngoing, models.EventStatusOngoing)
}

// GenerateCheckinPin yeni 6 haneli PIN üretir, kaydeder ve aktifleştirir.
// Önceki PIN ile alınmış bütün konsol oturumları geçersizleşir.
func (s *EventService) GenerateCheckinPin(ctx context.Context, actor *models.User, eventID uint) (string, error) {
	if actor == nil || !actor.IsAdmin() {
		return "", ErrEventForbidden
	}
	pin, err := codegen.Pin()
	if err != nil {
		return "", err
	}
	err = withTx(ctx, s.db, func(txCtx context.Context) error {
		if _, err := s.repo.FindByID(txCtx, eventID); err != nil {
			if err == repositories.ErrNotFound {
				return ErrEventNotFound
			}
			return err
		}
		if err := s.repo.UpdateFields(txCtx, eventID, map[string]interface{}{
			"checkin_pin":        pin,
			"checkin_pin_active": true,
		}); err != nil {
			return err
		}
		// PIN'in kendisi audit'e yazılmaz
		return auditEntry(txCtx, s.auditRepo, &actor.ID, "checkin_pin_generated", "events", eventID, nil, nil, "")
	})
	if err != nil {
		return "", err
	}
	return pin, nil
}

func (s *EventService) GetCheckinPin(ctx context.Context, actor *models.User, eventID uint) (string, error) {
	if actor == nil || !actor.IsAdmin() {
		return "", ErrEventForbidden
	}
	event, err := s.GetEventByID(ctx, eventID)
	if err != nil {
		return "", err
	}
	if event.CheckinPin == "" {
		return "", ErrEventPinNotSet
	}
	return event.CheckinPin, nil
}

func (s *EventService) SetCheckinPinActive(ctx context.Context, actor *models.User, eventID uint, active bool) error {
	if actor == nil || !actor.IsAdmin() {
		return ErrEventForbidden
	}
	return withTx(ctx, s.db, func(txCtx context.Context) error {
		event, err := s.repo.FindByID(txCtx, eventID)
		if err != nil {
			if err == repositories.ErrNotFound {
				return ErrEventNotFound
			}
			return err
		}
		if active && event.CheckinPin == "" {
			return ErrEventPinNotSet
		}
		if err := s.repo.UpdateFields(txCtx, eventID, map[string]interface{}{"checkin_pin_active": active}); err != nil {
			return err
		}
		return auditEntry(txCtx, s.auditRepo, &actor.ID, "checkin_pin_toggled", "events", eventID,
			map[string]interface{}{"active": event.CheckinPinActive},
			map[string]interface{}{"active": active}, "")
	})
}

func (s *EventService) SetPinAutoDeactivateHours(ctx context.Context, actor *models.User, eventID uint, hours *int) error {
	if actor == nil || !actor.IsAdmin() {
		return ErrEventForbidden
	}
	if hours != nil && *hours < 0 {
		return ErrEventNegativeHours
	}
	err := s.repo.UpdateFields(ctx, eventID, map[string]interface{}{"checkin_pin_auto_deactivate_hours": hours})
	if err == repositories.ErrNotFound {
		return ErrEventNotFound
	}
	return err
}

var _ IEventService = (*EventService)(nil)
