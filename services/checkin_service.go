package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"davetli.app/configs"
	"davetli.app/configs/configslog"
	"davetli.app/models"
	"davetli.app/pkg/checkintoken"
	"davetli.app/pkg/eventtime"
	"davetli.app/repositories"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CheckinServiceError özel servis hataları
type CheckinServiceError string

func (e CheckinServiceError) Error() string { return string(e) }

const (
	ErrCheckinEventNotFound  CheckinServiceError = "etkinlik bulunamadı"
	ErrCheckinPinInvalid     CheckinServiceError = "PIN hatalı veya aktif değil"
	ErrCheckinWindowClosed   CheckinServiceError = "check-in penceresi kapalı"
	ErrCheckinSessionInvalid CheckinServiceError = "konsol oturumu geçersiz, yeniden PIN girin"
	ErrCheckinRecordNotFound CheckinServiceError = "davetiye kaydı bulunamadı"
	ErrCheckinNotApproved    CheckinServiceError = "yalnızca onaylı davetli check-in yapabilir"
	ErrCheckinWrongEvent     CheckinServiceError = "kayıt bu etkinliğe ait değil"
	ErrCheckinNotCheckedIn   CheckinServiceError = "kayıt check-in yapılmış değil"
)

// AlreadyCheckedInError mükerrer check-in denemesi; önceki girişin zamanını
// taşır ki konsol görevliye gösterebilsin.
type AlreadyCheckedInError struct {
	CheckedInAt time.Time
}

func (e *AlreadyCheckedInError) Error() string {
	return fmt.Sprintf("davetli zaten check-in yapmış (%s)", e.CheckedInAt.Format("15:04"))
}

// ConsoleSession PIN doğrulaması sonrası konsola verilen oturum.
type ConsoleSession struct {
	Token     string    `json:"token"`
	EventID   uint      `json:"event_id"`
	EventName string    `json:"event_name"`
	EventCode string    `json:"event_code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ICheckinService PIN korumalı check-in konsolu.
type ICheckinService interface {
	VerifyPin(ctx context.Context, eventCode, pin, ip, userAgent string) (*ConsoleSession, error)
	ValidateSession(ctx context.Context, token string) (*models.Event, error)
	Search(ctx context.Context, token, q string, limit int) ([]models.EventInvitee, error)
	CheckIn(ctx context.Context, token string, eventInviteeID uint, actualGuests int, notes, ip string) (*models.EventInvitee, error)
	CheckInAsUser(ctx context.Context, actor *models.User, eventInviteeID uint, actualGuests int, notes, ip string) (*models.EventInvitee, error)
	UndoCheckIn(ctx context.Context, token string, eventInviteeID uint, ip string) error
	RecentCheckins(ctx context.Context, token string, limit int) ([]models.EventInvitee, error)
	ConsoleStats(ctx context.Context, token string) (*repositories.AttendanceStats, error)
}

// CheckinService ICheckinService arayüzünü uygular.
type CheckinService struct {
	eiRepo      repositories.IEventInviteeRepository
	eventRepo   repositories.IEventRepository
	auditRepo   repositories.IAuditLogRepository
	db          *gorm.DB
	clock       eventtime.Clock
	tokenSecret string
	tokenTTL    time.Duration
}

// NewCheckinService yeni bir CheckinService örneği oluşturur.
func NewCheckinService() ICheckinService {
	cfg := configs.LoadConfig()
	return &CheckinService{
		eiRepo:      repositories.NewEventInviteeRepository(),
		eventRepo:   repositories.NewEventRepository(),
		auditRepo:   repositories.NewAuditLogRepository(),
		db:          configs.GetDB(),
		clock:       eventtime.System(),
		tokenSecret: cfg.CheckinTokenSecret,
		tokenTTL:    time.Duration(cfg.CheckinTokenTTL) * time.Hour,
	}
}

// VerifyPin etkinlik kodu + PIN ile konsol oturumu açar. Oturum anahtarı
// PIN'in bcrypt özetini taşır: PIN değişir veya pasifleşirse eldeki bütün
// anahtarlar sonraki istekte geçersiz sayılır. Başarılı ve başarısız
// denemeler cihaz bilgisiyle birlikte iz kaydına yazılır.
func (s *CheckinService) VerifyPin(ctx context.Context, eventCode, pin, ip, userAgent string) (*ConsoleSession, error) {
	eventCode = strings.ToUpper(strings.TrimSpace(eventCode))
	pin = strings.TrimSpace(pin)
	if eventCode == "" || pin == "" {
		return nil, ErrCheckinPinInvalid
	}
	event, err := s.eventRepo.FindByCode(ctx, eventCode)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, ErrCheckinEventNotFound
		}
		return nil, err
	}
	now := s.clock.Now()
	if !event.CheckinPinActive || event.CheckinPin == "" {
		return nil, ErrCheckinPinInvalid
	}
	if subtle.ConstantTimeCompare([]byte(event.CheckinPin), []byte(pin)) != 1 {
		configslog.SLog.Warnf("Hatalı PIN denemesi: event=%s", eventCode)
		_ = auditEntry(ctx, s.auditRepo, nil, "checkin_console_login_failed", "events",
			event.ID, nil, fmt.Sprintf("Etkinlik: %s, Cihaz: %s", event.Name, deviceSummary(userAgent)), ip)
		return nil, ErrCheckinPinInvalid
	}
	if !event.IsCheckinAllowed(now) {
		return nil, ErrCheckinWindowClosed
	}

	pinHash, err := bcrypt.GenerateFromPassword([]byte(event.CheckinPin), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	// exp duvar saatine göre doğrulanır; anahtar kaydırılmış etkinlik
	// saatiyle değil gerçek saatle basılır
	issued := time.Now()
	token, err := checkintoken.Issue(s.tokenSecret, event.Code, string(pinHash), s.tokenTTL, issued)
	if err != nil {
		return nil, err
	}
	_ = auditEntry(ctx, s.auditRepo, nil, "checkin_console_login", "events",
		event.ID, nil, fmt.Sprintf("Etkinlik: %s, Cihaz: %s", event.Name, deviceSummary(userAgent)), ip)
	return &ConsoleSession{
		Token:     token,
		EventID:   event.ID,
		EventName: event.Name,
		EventCode: event.Code,
		ExpiresAt: issued.Add(s.tokenTTL),
	}, nil
}

// deviceSummary User-Agent başlığından kaba bir işletim sistemi / tarayıcı /
// cihaz tipi özeti çıkarır. İz kaydında insan okunur olması yeterlidir.
func deviceSummary(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return "Bilinmeyen Cihaz"
	}
	ua := strings.ToLower(userAgent)

	osInfo := "Bilinmeyen OS"
	switch {
	case strings.Contains(ua, "iphone"):
		osInfo = "iPhone"
	case strings.Contains(ua, "ipad"):
		osInfo = "iPad"
	case strings.Contains(ua, "android"):
		osInfo = "Android"
	case strings.Contains(ua, "windows"):
		osInfo = "Windows"
	case strings.Contains(ua, "macintosh"), strings.Contains(ua, "mac os"):
		osInfo = "Mac"
	case strings.Contains(ua, "linux"):
		osInfo = "Linux"
	}

	browser := "Bilinmeyen Tarayıcı"
	switch {
	case strings.Contains(ua, "edg/"), strings.Contains(ua, "edge"):
		browser = "Edge"
	case strings.Contains(ua, "opr/"), strings.Contains(ua, "opera"):
		browser = "Opera"
	case strings.Contains(ua, "chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	}

	deviceType := "Masaüstü"
	for _, marker := range []string{"mobile", "android", "iphone", "ipad"} {
		if strings.Contains(ua, marker) {
			deviceType = "Mobil"
			break
		}
	}
	return fmt.Sprintf("%s - %s (%s)", osInfo, browser, deviceType)
}

// ValidateSession anahtarı her istekte etkinliğin GÜNCEL durumuna karşı
// doğrular: imza, süre, PIN aynılığı ve check-in penceresi.
func (s *CheckinService) ValidateSession(ctx context.Context, token string) (*models.Event, error) {
	claims, err := checkintoken.Parse(s.tokenSecret, token)
	if err != nil {
		return nil, ErrCheckinSessionInvalid
	}
	event, err := s.eventRepo.FindByCode(ctx, claims.EventCode)
	if err != nil {
		return nil, ErrCheckinSessionInvalid
	}
	if !event.CheckinPinActive || event.CheckinPin == "" {
		return nil, ErrCheckinSessionInvalid
	}
	if bcrypt.CompareHashAndPassword([]byte(claims.PinHash), []byte(event.CheckinPin)) != nil {
		// PIN oturum açıldıktan sonra yenilenmiş
		return nil, ErrCheckinSessionInvalid
	}
	if !event.IsCheckinAllowed(s.clock.Now()) {
		return nil, ErrCheckinWindowClosed
	}
	return event, nil
}

func (s *CheckinService) Search(ctx context.Context, token, q string, limit int) ([]models.EventInvitee, error) {
	event, err := s.ValidateSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(q) == "" {
		return []models.EventInvitee{}, nil
	}
	return s.eiRepo.SearchApproved(ctx, event.ID, q, limit)
}

// doCheckIn giriş kaydının çekirdeği; checkedInBy konsolda nil gelir.
func (s *CheckinService) doCheckIn(ctx context.Context, eventID, eventInviteeID uint, checkedInBy *uint, actualGuests int, notes, ip string) (*models.EventInvitee, error) {
	var result *models.EventInvitee
	err := withTx(ctx, s.db, func(txCtx context.Context) error {
		ei, err := s.eiRepo.FindByIDForUpdate(txCtx, eventInviteeID)
		if err != nil {
			if err == repositories.ErrNotFound {
				return ErrCheckinRecordNotFound
			}
			return err
		}
		if eventID != 0 && ei.EventID != eventID {
			return ErrCheckinWrongEvent
		}
		if ei.Status != models.StatusApproved {
			return ErrCheckinNotApproved
		}
		if ei.CheckedIn {
			at := s.clock.Now()
			if ei.CheckedInAt != nil {
				at = *ei.CheckedInAt
			}
			return &AlreadyCheckedInError{CheckedInAt: at}
		}
		before := *ei
		ei.CheckIn(checkedInBy, actualGuests, notes, s.clock.Now())
		if err := s.eiRepo.Update(txCtx, ei); err != nil {
			return err
		}
		result = ei
		return auditEntry(txCtx, s.auditRepo, checkedInBy, "checked_in", "event_invitees",
			ei.ID, before, ei, ip)
	})
	if err != nil {
		return nil, err
	}
	return s.eiRepo.FindByID(ctx, result.ID)
}

// CheckIn konsol oturumuyla giriş kaydeder.
func (s *CheckinService) CheckIn(ctx context.Context, token string, eventInviteeID uint, actualGuests int, notes, ip string) (*models.EventInvitee, error) {
	event, err := s.ValidateSession(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.doCheckIn(ctx, event.ID, eventInviteeID, nil, actualGuests, notes, ip)
}

// CheckInAsUser oturum açmış personelin (admin/direktör) girişi; kayıt kimin
// yaptığını taşır.
func (s *CheckinService) CheckInAsUser(ctx context.Context, actor *models.User, eventInviteeID uint, actualGuests int, notes, ip string) (*models.EventInvitee, error) {
	if actor == nil || (!actor.IsAdmin() && actor.Role != models.RoleDirector && actor.Role != models.RoleCheckinAttendant) {
		return nil, ErrCheckinSessionInvalid
	}
	return s.doCheckIn(ctx, 0, eventInviteeID, &actor.ID, actualGuests, notes, ip)
}

// UndoCheckIn hatalı girişi tamamen temizler; tekrar check-in yapılabilir.
func (s *CheckinService) UndoCheckIn(ctx context.Context, token string, eventInviteeID uint, ip string) error {
	event, err := s.ValidateSession(ctx, token)
	if err != nil {
		return err
	}
	return withTx(ctx, s.db, func(txCtx context.Context) error {
		ei, err := s.eiRepo.FindByIDForUpdate(txCtx, eventInviteeID)
		if err != nil {
			if err == repositories.ErrNotFound {
				return ErrCheckinRecordNotFound
			}
			return err
		}
		if ei.EventID != event.ID {
			return ErrCheckinWrongEvent
		}
		if !ei.CheckedIn {
			return ErrCheckinNotCheckedIn
		}
		before := *ei
		ei.UndoCheckIn()
		if err := s.eiRepo.Update(txCtx, ei); err != nil {
			return err
		}
		return auditEntry(txCtx, s.auditRepo, nil, "checkin_undone", "event_invitees",
			ei.ID, before, ei, ip)
	})
}

func (s *CheckinService) RecentCheckins(ctx context.Context, token string, limit int) ([]models.EventInvitee, error) {
	event, err := s.ValidateSession(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.eiRepo.RecentCheckins(ctx, event.ID, limit)
}

func (s *CheckinService) ConsoleStats(ctx context.Context, token string) (*repositories.AttendanceStats, error) {
	event, err := s.ValidateSession(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.eiRepo.Stats(ctx, event.ID)
}

var _ ICheckinService = (*CheckinService)(nil)
