package services

import (
	"context"
	"strings"
	"time"

	"davetli.app/configs"
	"davetli.app/configs/configslog"
	"davetli.app/models"
	"davetli.app/pkg/eventtime"
	"davetli.app/pkg/phoneutil"
	"davetli.app/repositories"

	"gorm.io/gorm"
)

// PortalServiceError özel servis hataları
type PortalServiceError string

func (e PortalServiceError) Error() string { return string(e) }

const (
	ErrPortalRecordNotFound PortalServiceError = "davetiye bulunamadı"
	ErrPortalNotApproved    PortalServiceError = "davetiye henüz onaylanmamış"
	ErrPortalEventClosed    PortalServiceError = "etkinlik sona erdi, portal kapalı"
	ErrPortalInvalidInput   PortalServiceError = "geçersiz portal girdisi"
	ErrPortalForbidden      PortalServiceError = "bu işlem için yetkiniz yok"
)

// PortalView portalın dışarı açtığı güvenli görünüm. İç ID'ler ve onay
// süreci alanları dışarı sızmaz.
type PortalView struct {
	InviteeName         string     `json:"invitee_name"`
	InviteeTitle        string     `json:"invitee_title,omitempty"`
	EventName           string     `json:"event_name"`
	EventVenue          string     `json:"event_venue,omitempty"`
	EventStart          time.Time  `json:"event_start"`
	EventEnd            time.Time  `json:"event_end"`
	AttendanceCode      string     `json:"attendance_code"`
	PlusOne             int        `json:"plus_one"`
	AttendanceConfirmed *bool      `json:"attendance_confirmed"`
	ConfirmedGuests     *int       `json:"confirmed_guests"`
	ConfirmedAt         *time.Time `json:"confirmed_at"`
	FirstAccess         bool       `json:"first_access"`
}

// IPortalService davetli portalı: kodla/telefonla doğrulama ve LCV.
type IPortalService interface {
	VerifyByCode(ctx context.Context, code, ip string) (*PortalView, error)
	VerifyByPhone(ctx context.Context, phone, ip string) (*PortalView, error)
	Confirm(ctx context.Context, code string, isComing bool, guestCount *int, ip string) (*PortalView, error)
	AdminConfirm(ctx context.Context, actor *models.User, ids []uint, isComing bool, guestCount *int, ip string) (*DecisionSummary, error)
	ResetConfirmation(ctx context.Context, actor *models.User, eventInviteeID uint) error
}

// PortalService IPortalService arayüzünü uygular.
type PortalService struct {
	eiRepo      repositories.IEventInviteeRepository
	auditRepo   repositories.IAuditLogRepository
	db          *gorm.DB
	clock       eventtime.Clock
	phoneRegion string
}

// NewPortalService yeni bir PortalService örneği oluşturur.
func NewPortalService() IPortalService {
	return &PortalService{
		eiRepo:      repositories.NewEventInviteeRepository(),
		auditRepo:   repositories.NewAuditLogRepository(),
		db:          configs.GetDB(),
		clock:       eventtime.System(),
		phoneRegion: configs.LoadConfig().DefaultPhoneRegion,
	}
}

func portalView(ei *models.EventInvitee, firstAccess bool) *PortalView {
	view := &PortalView{
		PlusOne:             ei.PlusOne,
		AttendanceConfirmed: ei.AttendanceConfirmed,
		ConfirmedGuests:     ei.ConfirmedGuests,
		ConfirmedAt:         ei.ConfirmedAt,
		FirstAccess:         firstAccess,
	}
	if ei.AttendanceCode != nil {
		view.AttendanceCode = *ei.AttendanceCode
	}
	if ei.Invitee != nil {
		view.InviteeName = ei.Invitee.Name
		view.InviteeTitle = ei.Invitee.Title
	}
	if ei.Event != nil {
		view.EventName = ei.Event.Name
		view.EventVenue = ei.Event.Venue
		view.EventStart = ei.Event.StartDate
		view.EventEnd = ei.Event.EndDate
	}
	return view
}

// access doğrulanan kaydın portal erişimini işler: yalnızca ilk erişim
// damgalanır, sonrakiler kaydı değiştirmez.
func (s *PortalService) access(ctx context.Context, ei *models.EventInvitee, ip string) (*PortalView, error) {
	if ei.Status != models.StatusApproved {
		return nil, ErrPortalNotApproved
	}
	if ei.Event != nil {
		status := ei.Event.ComputeStatus(s.clock.Now())
		if status == models.EventStatusEnded || status == models.EventStatusCancelled {
			return nil, ErrPortalEventClosed
		}
	}

	firstAccess := ei.PortalAccessedAt == nil
	if firstAccess {
		err := withTx(ctx, s.db, func(txCtx context.Context) error {
			fresh, err := s.eiRepo.FindByIDForUpdate(txCtx, ei.ID)
			if err != nil {
				return err
			}
			if fresh.PortalAccessedAt != nil {
				firstAccess = false
				ei.PortalAccessedAt = fresh.PortalAccessedAt
				return nil
			}
			fresh.RecordPortalAccess(s.clock.Now())
			ei.PortalAccessedAt = fresh.PortalAccessedAt
			if err := s.eiRepo.Update(txCtx, fresh); err != nil {
				return err
			}
			return auditEntry(txCtx, s.auditRepo, nil, "portal_first_access", "event_invitees",
				ei.ID, nil, nil, ip)
		})
		if err != nil {
			configslog.SLog.Warnf("Portal erişim damgası yazılamadı: %v", err)
		}
	}
	return portalView(ei, firstAccess), nil
}

// VerifyByCode katılım koduyla doğrular.
func (s *PortalService) VerifyByCode(ctx context.Context, code, ip string) (*PortalView, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrPortalInvalidInput
	}
	ei, err := s.eiRepo.FindByAttendanceCode(ctx, code)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, ErrPortalRecordNotFound
		}
		return nil, err
	}
	return s.access(ctx, ei, ip)
}

// VerifyByPhone telefon numarasıyla doğrular. Numara birden fazla aktif
// etkinlikte onaylıysa en erken başlayan seçilir. Eski kayıtlarla uyum için
// son 10 hane üzerinden gevşek eşleşme yapılır.
func (s *PortalService) VerifyByPhone(ctx context.Context, phone, ip string) (*PortalView, error) {
	suffix := phoneutil.LastDigits(phone, 10)
	if suffix == "" {
		return nil, ErrPortalInvalidInput
	}
	ei, err := s.eiRepo.FindApprovedByPhone(ctx, suffix, nil)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, ErrPortalRecordNotFound
		}
		return nil, err
	}
	return s.access(ctx, ei, ip)
}

// Confirm LCV yanıtını yazar. Son yazan kazanır; misafir sayısı plus_one
// tavanına kırpılır.
func (s *PortalService) Confirm(ctx context.Context, code string, isComing bool, guestCount *int, ip string) (*PortalView, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrPortalInvalidInput
	}
	var view *PortalView
	err := withTx(ctx, s.db, func(txCtx context.Context) error {
		ei, err := s.eiRepo.FindByAttendanceCode(txCtx, code)
		if err != nil {
			if err == repositories.ErrNotFound {
				return ErrPortalRecordNotFound
			}
			return err
		}
		if ei.Status != models.StatusApproved {
			return ErrPortalNotApproved
		}
		if ei.Event != nil {
			status := ei.Event.ComputeStatus(s.clock.Now())
			if status == models.EventStatusEnded || status == models.EventStatusCancelled {
				return ErrPortalEventClosed
			}
		}
		before := *ei
		now := s.clock.Now()
		ei.RecordPortalAccess(now)
		ei.ConfirmAttendance(isComing, guestCount, now)
		if err := s.eiRepo.Update(txCtx, ei); err != nil {
			return err
		}
		view = portalView(ei, false)
		return auditEntry(txCtx, s.auditRepo, nil, "portal_confirmed", "event_invitees",
			ei.ID, before, ei, ip)
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// AdminConfirm davetli adına LCV yanıtını elle işler (telefonla dönüş vb.).
// Toplu çalışır, kısmi başarı normaldir. Yalnızca admin.
func (s *PortalService) AdminConfirm(ctx context.Context, actor *models.User, ids []uint, isComing bool, guestCount *int, ip string) (*DecisionSummary, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, ErrPortalForbidden
	}
	summary := &DecisionSummary{}
	for _, id := range ids {
		err := withTx(ctx, s.db, func(txCtx context.Context) error {
			ei, err := s.eiRepo.FindByID(txCtx, id)
			if err != nil {
				if err == repositories.ErrNotFound {
					return ErrPortalRecordNotFound
				}
				return err
			}
			if ei.Status != models.StatusApproved {
				return ErrPortalNotApproved
			}
			before := *ei
			ei.ConfirmAttendance(isComing, guestCount, s.clock.Now())
			if err := s.eiRepo.Update(txCtx, ei); err != nil {
				return err
			}
			return auditEntry(txCtx, s.auditRepo, &actor.ID, "attendance_confirmed_manually", "event_invitees",
				ei.ID, before, ei, ip)
		})
		result := DecisionResult{EventInviteeID: id, OK: err == nil}
		if err != nil {
			result.Error = err.Error()
			summary.Failed++
		} else {
			summary.Succeeded++
		}
		summary.Results = append(summary.Results, result)
	}
	configslog.SLog.Infof("Elle LCV tamamlandı: başarılı=%d başarısız=%d", summary.Succeeded, summary.Failed)
	return summary, nil
}

// ResetConfirmation LCV yanıtını sıfırlar; davetli portaldan yeniden yanıt
// verebilir. Yalnızca admin.
func (s *PortalService) ResetConfirmation(ctx context.Context, actor *models.User, eventInviteeID uint) error {
	if actor == nil || !actor.IsAdmin() {
		return ErrPortalForbidden
	}
	return withTx(ctx, s.db, func(txCtx context.Context) error {
		ei, err := s.eiRepo.FindByID(txCtx, eventInviteeID)
		if err != nil {
			if err == repositories.ErrNotFound {
				return ErrPortalRecordNotFound
			}
			return err
		}
		before := *ei
		ei.AttendanceConfirmed = nil
		ei.ConfirmedAt = nil
		ei.ConfirmedGuests = nil
		if err := s.eiRepo.Update(txCtx, ei); err != nil {
			return err
		}
		return auditEntry(txCtx, s.auditRepo, &actor.ID, "portal_confirmation_reset", "event_invitees",
			ei.ID, before, ei, "")
	})
}

var _ IPortalService = (*PortalService)(nil)
