package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

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

// AttendanceServiceError özel servis hataları
type AttendanceServiceError string

func (e AttendanceServiceError) Error() string { return string(e) }

const (
	ErrAttendanceForbidden     AttendanceServiceError = "bu işlem için yetkiniz yok"
	ErrAttendanceNotApproved   AttendanceServiceError = "yalnızca onaylı davetli için kod üretilebilir"
	ErrAttendanceCodeGenFailed AttendanceServiceError = "benzersiz katılım kodu üretilemedi"
	ErrAttendanceNotFound      AttendanceServiceError = "davetiye kaydı bulunamadı"
	ErrAttendanceNoCode        AttendanceServiceError = "önce katılım kodu üretilmelidir"
	ErrAttendanceNotSent       AttendanceServiceError = "kayıt gönderilmiş olarak işaretli değil"
)

// CodeGenSummary toplu kod üretiminin sonucu.
type CodeGenSummary struct {
	Generated int `json:"generated"`
	Skipped   int `json:"skipped"` // kodu zaten olanlar
	Failed    int `json:"failed"`
}

// IAttendanceService katılım kodu ve gönderim takibi.
type IAttendanceService interface {
	GenerateCode(ctx context.Context, actor *models.User, eventInviteeID uint) (*models.EventInvitee, error)
	GenerateCodesForEvent(ctx context.Context, actor *models.User, eventID uint) (*CodeGenSummary, error)
	MarkInvitationsSent(ctx context.Context, actor *models.User, ids []uint, method models.InvitationMethod) *DecisionSummary
	UndoMarkSent(ctx context.Context, actor *models.User, eventInviteeID uint) error
	GetStats(ctx context.Context, actor *models.User, eventID uint) (*repositories.AttendanceStats, error)
}

// AttendanceService IAttendanceService arayüzünü uygular.
type AttendanceService struct {
	eiRepo    repositories.IEventInviteeRepository
	eventRepo repositories.IEventRepository
	auditRepo repositories.IAuditLogRepository
	db        *gorm.DB
	clock     eventtime.Clock
}

// NewAttendanceService yeni bir AttendanceService örneği oluşturur.
func NewAttendanceService() IAttendanceService {
	return &AttendanceService{
		eiRepo:    repositories.NewEventInviteeRepository(),
		eventRepo: repositories.NewEventRepository(),
		auditRepo: repositories.NewAuditLogRepository(),
		db:        configs.GetDB(),
		clock:     eventtime.System(),
	}
}

func canManageAttendance(actor *models.User) bool {
	return actor != nil && (actor.IsAdmin() || actor.Role == models.RoleDirector)
}

// attendancePrefix etkinlik adının harf/rakamlarından en çok 4 karakterlik
// büyük harf önek çıkarır. Ad hiç harf/rakam içermiyorsa EVT<id> kullanılır.
func attendancePrefix(event *models.Event, eventID uint) string {
	name := ""
	if event != nil {
		name = event.Name
	}
	var sb strings.Builder
	count := 0
	for _, r := range name {
		if count == 4 {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToUpper(r))
			count++
		}
	}
	if count == 0 {
		return fmt.Sprintf("EVT%d", eventID)
	}
	return sb.String()
}

// generateUniqueCode verilen önekle çakışmayan katılım kodu üretir.
// Olasılık alanı geniş olduğundan birkaç deneme yeterlidir; yine de sınırlı
// sayıda tekrar denenir.
func (s *AttendanceService) generateUniqueCode(ctx context.Context, prefix string) (string, error) {
	var code string
	backoff := retry.WithMaxRetries(100, retry.NewConstant(time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		candidate, err := codegen.AttendanceCode(prefix)
		if err != nil {
			return err
		}
		exists, err := s.eiRepo.CodeExists(ctx, candidate)
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
		return "", ErrAttendanceCodeGenFailed
	}
	return code, nil
}

// GenerateCode tek davetli için katılım kodu üretir. Kodu olan kayıt için
// no-op'tur: mevcut kod döner, yenisi üretilmez.
func (s *AttendanceService) GenerateCode(ctx context.Context, actor *models.User, eventInviteeID uint) (*models.EventInvitee, error) {
	if !canManageAttendance(actor) {
		return nil, ErrAttendanceForbidden
	}
	var result *models.EventInvitee
	err := withTx(ctx, s.db, func(txCtx context.Context) error {
		ei, err := s.eiRepo.FindByID(txCtx, eventInviteeID)
		if err != nil {
			if err == repositories.ErrNotFound {
				return ErrAttendanceNotFound
			}
			return err
		}
		if ei.Status != models.StatusApproved {
			return ErrAttendanceNotApproved
		}
		if ei.AttendanceCode != nil {
			result = ei
			return nil
		}
		code, err := s.generateUniqueCode(txCtx, attendancePrefix(ei.Event, ei.EventID))
		if err != nil {
			return err
		}
		now := s.clock.Now()
		ei.AttendanceCode = &code
		ei.CodeGeneratedAt = &now
		if err := s.eiRepo.Update(txCtx, ei); err != nil {
			return err
		}
		result = ei
		return auditEntry(txCtx, s.auditRepo, &actor.ID, "attendance_code_generated", "event_invitees",
			ei.ID, nil, map[string]interface{}{"attendance_code": code}, "")
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GenerateCodesForEvent kodsuz bütün onaylı davetlilere kod üretir.
// Her kayıt kendi transaction'ında işlenir; tek çakışma toplu işi durdurmaz.
func (s *AttendanceService) GenerateCodesForEvent(ctx context.Context, actor *models.User, eventID uint) (*CodeGenSummary, error) {
	if !canManageAttendance(actor) {
		return nil, ErrAttendanceForbidden
	}
	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		if err == repositories.ErrNotFound {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	pending, err := s.eiRepo.FindApprovedWithoutCode(ctx, eventID)
	if err != nil {
		return nil, err
	}
	approvedTotal, err := s.eiRepo.CountForEvent(ctx, repositories.InvitationFilters{
		EventID: eventID, Status: models.StatusApproved,
	})
	if err != nil {
		return nil, err
	}

	summary := &CodeGenSummary{Skipped: int(approvedTotal) - len(pending)}
	for _, ei := range pending {
		if _, err := s.GenerateCode(ctx, actor, ei.ID); err != nil {
			summary.Failed++
			configslog.Log.Error("Katılım kodu üretilemedi",
				zap.Uint("event_invitee_id", ei.ID), zap.Error(err))
			continue
		}
		summary.Generated++
	}
	configslog.SLog.Infof("Toplu kod üretimi: event=%d üretilen=%d atlanan=%d hata=%d",
		eventID, summary.Generated, summary.Skipped, summary.Failed)
	return summary, nil
}

// MarkInvitationsSent seçilen kayıtları verilen kanalla gönderildi işaretler.
func (s *AttendanceService) MarkInvitationsSent(ctx context.Context, actor *models.User, ids []uint, method models.InvitationMethod) *DecisionSummary {
	summary := &DecisionSummary{Results: make([]DecisionResult, 0, len(ids))}
	for _, id := range ids {
		result := DecisionResult{EventInviteeID: id, OK: true}
		if err := s.markSent(ctx, actor, id, method); err != nil {
			result.OK = false
			result.Error = err.Error()
			summary.Failed++
		} else {
			summary.Succeeded++
		}
		summary.Results = append(summary.Results, result)
	}
	return summary
}

func (s *AttendanceService) markSent(ctx context.Context, actor *models.User, id uint, method models.InvitationMethod) error {
	if !canManageAttendance(actor) {
		return ErrAttendanceForbidden
	}
	if !method.Valid() {
		return ErrInvitationMethodInvalid
	}
	return withTx(ctx, s.db, func(txCtx context.Context) error {
		ei, err := s.eiRepo.FindByID(txCtx, id)
		if err != nil {
			if err == repositories.ErrNotFound {
				return ErrAttendanceNotFound
			}
			return err
		}
		if ei.Status != models.StatusApproved {
			return ErrAttendanceNotApproved
		}
		if ei.AttendanceCode == nil {
			return ErrAttendanceNoCode
		}
		before := *ei
		ei.MarkInvitationSent(method, s.clock.Now())
		if err := s.eiRepo.Update(txCtx, ei); err != nil {
			return err
		}
		return auditEntry(txCtx, s.auditRepo, &actor.ID, "invitation_marked_sent", "event_invitees",
			ei.ID, before, ei, "")
	})
}

// UndoMarkSent gönderim bayrağını geri alır; katılım kodu korunur.
func (s *AttendanceService) UndoMarkSent(ctx context.Context, actor *models.User, eventInviteeID uint) error {
	if !canManageAttendance(actor) {
		return ErrAttendanceForbidden
	}
	return withTx(ctx, s.db, func(txCtx context.Context) error {
		ei, err := s.eiRepo.FindByID(txCtx, eventInviteeID)
		if err != nil {
			if err == repositories.ErrNotFound {
				return ErrAttendanceNotFound
			}
			return err
		}
		if !ei.InvitationSent {
			return ErrAttendanceNotSent
		}
		before := *ei
		ei.UndoInvitationSent()
		if err := s.eiRepo.Update(txCtx, ei); err != nil {
			return err
		}
		return auditEntry(txCtx, s.auditRepo, &actor.ID, "invitation_sent_undone", "event_invitees",
			ei.ID, before, ei, "")
	})
}

// GetStats etkinlik katılım sayaçları.
func (s *AttendanceService) GetStats(ctx context.Context, actor *models.User, eventID uint) (*repositories.AttendanceStats, error) {
	if !canManageAttendance(actor) {
		return nil, ErrAttendanceForbidden
	}
	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		if err == repositories.ErrNotFound {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return s.eiRepo.Stats(ctx, eventID)
}

var _ IAttendanceService = (*AttendanceService)(nil)
