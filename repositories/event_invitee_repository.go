package repositories

import (
	"context"
	"errors"
	"strings"

	"davetli.app/configs"
	"davetli.app/configs/configslog"
	"davetli.app/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvitationFilters davetiye listeleme filtreleri.
type InvitationFilters struct {
	EventID        uint
	Status         models.InvitationStatus
	ExcludeStatus  []models.InvitationStatus
	InviterGroupID uint // davet edenin grubu VEYA kaydı girenin grubu
	InviterUserID  uint
	Limit          int // 0 = sınırsız
	Offset         int
}

// AttendanceStats bir etkinliğin katılım sayaçları (salt okunur rapor yüzeyi).
type AttendanceStats struct {
	TotalApproved       int64 `json:"total_approved"`
	CodesGenerated      int64 `json:"codes_generated"`
	InvitationsSent     int64 `json:"invitations_sent"`
	ConfirmedComing     int64 `json:"confirmed_coming"`
	ConfirmedNotComing  int64 `json:"confirmed_not_coming"`
	NotResponded        int64 `json:"not_responded"`
	CheckedIn           int64 `json:"checked_in"`
	NotCheckedIn        int64 `json:"not_checked_in"`
	TotalPlusOneAllowed int64 `json:"total_plus_one_allowed"`
	TotalConfirmedGuest int64 `json:"total_confirmed_guests"`
	TotalActualGuests   int64 `json:"total_actual_guests"`
	ExpectedTotal       int64 `json:"expected_total"`
	ActualTotal         int64 `json:"actual_total"`
}

// IEventInviteeRepository davetiye (EventInvitee) veritabanı işlemleri.
type IEventInviteeRepository interface {
	Create(ctx context.Context, ei *models.EventInvitee) error
	FindByID(ctx context.Context, id uint) (*models.EventInvitee, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*models.EventInvitee, error)
	FindByEventAndInvitee(ctx context.Context, eventID, inviteeID uint) (*models.EventInvitee, error)
	FindByAttendanceCode(ctx context.Context, code string) (*models.EventInvitee, error)
	FindApprovedByPhone(ctx context.Context, phoneSuffix string, eventID *uint) (*models.EventInvitee, error)
	FindForEvent(ctx context.Context, filters InvitationFilters) ([]models.EventInvitee, error)
	CountForEvent(ctx context.Context, filters InvitationFilters) (int64, error)
	FindPending(ctx context.Context, filters InvitationFilters) ([]models.EventInvitee, error)
	FindByInvitee(ctx context.Context, inviteeID uint) ([]models.EventInvitee, error)
	FindApprovedWithoutCode(ctx context.Context, eventID uint) ([]models.EventInvitee, error)
	SearchApproved(ctx context.Context, eventID uint, q string, limit int) ([]models.EventInvitee, error)
	RecentCheckins(ctx context.Context, eventID uint, limit int) ([]models.EventInvitee, error)
	Update(ctx context.Context, ei *models.EventInvitee) error
	Delete(ctx context.Context, ei *models.EventInvitee) error
	CodeExists(ctx context.Context, code string) (bool, error)
	CountGroupUsage(ctx context.Context, eventID, groupID uint) (int64, error)
	FindCrossGroupPhoneConflict(ctx context.Context, eventID uint, phone string, submitterGroupID uint) (*models.EventInvitee, error)
	Stats(ctx context.Context, eventID uint) (*AttendanceStats, error)
}

// EventInviteeRepository IEventInviteeRepository arayüzünü uygular.
type EventInviteeRepository struct {
	db *gorm.DB
}

// NewEventInviteeRepository yeni bir EventInviteeRepository örneği oluşturur.
func NewEventInviteeRepository() IEventInviteeRepository {
	return &EventInviteeRepository{db: configs.GetDB()}
}

// NewEventInviteeRepositoryTx transaction'lı repository.
func NewEventInviteeRepositoryTx(tx *gorm.DB) IEventInviteeRepository {
	return &EventInviteeRepository{db: tx}
}

func (r *EventInviteeRepository) getDB(ctx context.Context) *gorm.DB {
	return getDBFromContext(ctx, r.db)
}

func (r *EventInviteeRepository) preload(db *gorm.DB) *gorm.DB {
	return db.Preload("Event").Preload("Invitee").Preload("Inviter").Preload("Category")
}

func (r *EventInviteeRepository) Create(ctx context.Context, ei *models.EventInvitee) error {
	if ei == nil || ei.EventID == 0 || ei.InviteeID == 0 {
		return errors.New("geçersiz davetiye verisi")
	}
	return r.getDB(ctx).Create(ei).Error
}

func (r *EventInviteeRepository) FindByID(ctx context.Context, id uint) (*models.EventInvitee, error) {
	if id == 0 {
		return nil, errors.New("geçersiz EventInvitee ID")
	}
	var ei models.EventInvitee
	err := r.preload(r.getDB(ctx)).First(&ei, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("EventInviteeRepository.FindByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &ei, nil
}

// FindByIDForUpdate kaydı satır kilidiyle getirir; durum geçişlerinde
// check-then-act dizisinin atomik kalması için transaction içinde kullanılır.
func (r *EventInviteeRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.EventInvitee, error) {
	if id == 0 {
		return nil, errors.New("geçersiz EventInvitee ID")
	}
	var ei models.EventInvitee
	db := r.getDB(ctx)
	if db.Dialector.Name() != "sqlite" {
		db = db.Clauses(lockForUpdate())
	}
	err := db.First(&ei, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ei, nil
}

func (r *EventInviteeRepository) FindByEventAndInvitee(ctx context.Context, eventID, inviteeID uint) (*models.EventInvitee, error) {
	var ei models.EventInvitee
	err := r.preload(r.getDB(ctx)).Where("event_id = ? AND invitee_id = ?", eventID, inviteeID).First(&ei).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ei, nil
}

func (r *EventInviteeRepository) FindByAttendanceCode(ctx context.Context, code string) (*models.EventInvitee, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrNotFound
	}
	var ei models.EventInvitee
	err := r.preload(r.getDB(ctx)).Where("attendance_code = ?", code).First(&ei).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ei, nil
}

// FindApprovedByPhone onaylı davetiyeyi telefonla arar. eventID nil ise en
// erken upcoming/ongoing etkinlik seçilir (tasarım gereği birden fazla
// etkinlikte onaylı telefon için belirsizdir).
func (r *EventInviteeRepository) FindApprovedByPhone(ctx context.Context, phoneSuffix string, eventID *uint) (*models.EventInvitee, error) {
	if phoneSuffix == "" {
		return nil, ErrNotFound
	}
	like := "%" + phoneSuffix + "%"
	query := r.preload(r.getDB(ctx)).
		Joins("JOIN invitees ON invitees.id = event_invitees.invitee_id").
		Where("event_invitees.status = ?", models.StatusApproved).
		Where("invitees.phone LIKE ? OR invitees.secondary_phone LIKE ?", like, like)

	if eventID != nil {
		query = query.Where("event_invitees.event_id = ?", *eventID)
	} else {
		query = query.
			Joins("JOIN events ON events.id = event_invitees.event_id").
			Where("events.status IN ?", []models.EventStatus{models.EventStatusUpcoming, models.EventStatusOngoing}).
			Order("events.start_date asc")
	}

	var ei models.EventInvitee
	err := query.First(&ei).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ei, nil
}

func (r *EventInviteeRepository) applyGroupFilter(query *gorm.DB, groupID uint) *gorm.DB {
	// Veri izolasyonu: davet edenin grubu YA DA kaydı girenin grubu eşleşmeli
	return query.
		Joins("LEFT JOIN inviters ON inviters.id = event_invitees.inviter_id").
		Joins("LEFT JOIN users ON users.id = event_invitees.inviter_user_id").
		Where("inviters.inviter_group_id = ? OR users.inviter_group_id = ?", groupID, groupID)
}

func (r *EventInviteeRepository) forEventQuery(db *gorm.DB, filters InvitationFilters) *gorm.DB {
	query := db.Where("event_invitees.event_id = ?", filters.EventID)
	if filters.Status != "" {
		query = query.Where("event_invitees.status = ?", filters.Status)
	}
	if len(filters.ExcludeStatus) > 0 {
		query = query.Where("event_invitees.status NOT IN ?", filters.ExcludeStatus)
	}
	if filters.InviterGroupID != 0 {
		query = r.applyGroupFilter(query, filters.InviterGroupID)
	}
	return query
}

func (r *EventInviteeRepository) FindForEvent(ctx context.Context, filters InvitationFilters) ([]models.EventInvitee, error) {
	query := r.forEventQuery(r.preload(r.getDB(ctx)), filters)
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}
	var list []models.EventInvitee
	err := query.Order("event_invitees.created_at desc").Find(&list).Error
	return list, err
}

func (r *EventInviteeRepository) CountForEvent(ctx context.Context, filters InvitationFilters) (int64, error) {
	var count int64
	err := r.forEventQuery(r.getDB(ctx).Model(&models.EventInvitee{}), filters).Count(&count).Error
	return count, err
}

func (r *EventInviteeRepository) FindPending(ctx context.Context, filters InvitationFilters) ([]models.EventInvitee, error) {
	query := r.preload(r.getDB(ctx)).Where("event_invitees.status = ?", models.StatusWaitingForApproval)
	if filters.EventID != 0 {
		query = query.Where("event_invitees.event_id = ?", filters.EventID)
	}
	if filters.InviterUserID != 0 {
		query = query.Where("event_invitees.inviter_user_id = ?", filters.InviterUserID)
	}
	if filters.InviterGroupID != 0 {
		query = r.applyGroupFilter(query, filters.InviterGroupID)
	}
	var list []models.EventInvitee
	err := query.Order("event_invitees.created_at desc").Find(&list).Error
	return list, err
}

func (r *EventInviteeRepository) FindByInvitee(ctx context.Context, inviteeID uint) ([]models.EventInvitee, error) {
	var list []models.EventInvitee
	err := r.getDB(ctx).Preload("Event").Where("invitee_id = ?", inviteeID).Find(&list).Error
	return list, err
}

func (r *EventInviteeRepository) FindApprovedWithoutCode(ctx context.Context, eventID uint) ([]models.EventInvitee, error) {
	var list []models.EventInvitee
	err := r.getDB(ctx).
		Where("event_id = ? AND status = ? AND attendance_code IS NULL", eventID, models.StatusApproved).
		Find(&list).Error
	return list, err
}

// SearchApproved check-in konsolu araması: telefon > kod > isim önceliğiyle
// sıralanır (resepsiyonda kısmi telefon girişi en hızlı yol).
func (r *EventInviteeRepository) SearchApproved(ctx context.Context, eventID uint, q string, limit int) ([]models.EventInvitee, error) {
	if limit <= 0 {
		limit = 20
	}
	term := "%" + strings.TrimSpace(q) + "%"
	var list []models.EventInvitee
	err := r.preload(r.getDB(ctx)).
		Joins("JOIN invitees ON invitees.id = event_invitees.invitee_id").
		Joins("LEFT JOIN inviters ON inviters.id = event_invitees.inviter_id").
		Where("event_invitees.event_id = ? AND event_invitees.status = ?", eventID, models.StatusApproved).
		Where(`invitees.phone LIKE ? OR invitees.secondary_phone LIKE ?
			OR LOWER(event_invitees.attendance_code) LIKE LOWER(?)
			OR LOWER(invitees.name) LIKE LOWER(?)
			OR LOWER(inviters.name) LIKE LOWER(?)`, term, term, term, term, term).
		Clauses(clause.OrderBy{Expression: gorm.Expr(`CASE
			WHEN invitees.phone LIKE ? THEN 1
			WHEN invitees.secondary_phone LIKE ? THEN 2
			WHEN LOWER(event_invitees.attendance_code) LIKE LOWER(?) THEN 3
			ELSE 4 END`, term, term, term)}).
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *EventInviteeRepository) RecentCheckins(ctx context.Context, eventID uint, limit int) ([]models.EventInvitee, error) {
	if limit <= 0 {
		limit = 10
	}
	var list []models.EventInvitee
	err := r.preload(r.getDB(ctx)).
		Where("event_id = ? AND checked_in = ?", eventID, true).
		Order("checked_in_at desc").Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *EventInviteeRepository) Update(ctx context.Context, ei *models.EventInvitee) error {
	if ei == nil || ei.ID == 0 {
		return errors.New("güncellenecek davetiye geçerli değil")
	}
	return r.getDB(ctx).Save(ei).Error
}

func (r *EventInviteeRepository) Delete(ctx context.Context, ei *models.EventInvitee) error {
	if ei == nil || ei.ID == 0 {
		return errors.New("silinecek davetiye geçerli değil")
	}
	return r.getDB(ctx).Delete(ei).Error
}

func (r *EventInviteeRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.getDB(ctx).Model(&models.EventInvitee{}).Where("attendance_code = ?", code).Count(&count).Error
	return count > 0, err
}

// CountGroupUsage (etkinlik, grup) için reddedilmemiş davetiye sayısı.
// waiting_for_approval + approved = kullanım; rejected kontenjanı boşaltır.
func (r *EventInviteeRepository) CountGroupUsage(ctx context.Context, eventID, groupID uint) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&models.EventInvitee{}).
		Joins("JOIN invitees ON invitees.id = event_invitees.invitee_id").
		Where("event_invitees.event_id = ?", eventID).
		Where("invitees.inviter_group_id = ?", groupID).
		Where("event_invitees.status IN ?", []models.InvitationStatus{models.StatusWaitingForApproval, models.StatusApproved}).
		Count(&count).Error
	return count, err
}

// FindCrossGroupPhoneConflict aynı telefonun BAŞKA bir grup tarafından aynı
// etkinliğe reddedilmemiş durumla girilip girilmediğini arar. Telefon
// eşitliği kanonik (E.164) değer üzerinden kontrol edilir; kontaklar gruplar
// arasında kopyalanabildiğinden invitee-id eşitliği yeterli değildir.
func (r *EventInviteeRepository) FindCrossGroupPhoneConflict(ctx context.Context, eventID uint, phone string, submitterGroupID uint) (*models.EventInvitee, error) {
	var ei models.EventInvitee
	err := r.preload(r.getDB(ctx)).
		Joins("JOIN invitees ON invitees.id = event_invitees.invitee_id").
		Where("event_invitees.event_id = ?", eventID).
		Where("invitees.phone = ?", phone).
		Where("invitees.inviter_group_id IS NULL OR invitees.inviter_group_id <> ?", submitterGroupID).
		Where("event_invitees.status IN ?", []models.InvitationStatus{models.StatusWaitingForApproval, models.StatusApproved}).
		First(&ei).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ei, nil
}

func (r *EventInviteeRepository) Stats(ctx context.Context, eventID uint) (*AttendanceStats, error) {
	db := r.getDB(ctx)
	approved := func() *gorm.DB {
		return db.Model(&models.EventInvitee{}).Where("event_id = ? AND status = ?", eventID, models.StatusApproved)
	}

	var s AttendanceStats
	if err := approved().Count(&s.TotalApproved).Error; err != nil {
		return nil, err
	}
	if err := approved().Where("attendance_code IS NOT NULL").Count(&s.CodesGenerated).Error; err != nil {
		return nil, err
	}
	if err := approved().Where("invitation_sent = ?", true).Count(&s.InvitationsSent).Error; err != nil {
		return nil, err
	}
	if err := approved().Where("attendance_confirmed = ?", true).Count(&s.ConfirmedComing).Error; err != nil {
		return nil, err
	}
	if err := approved().Where("attendance_confirmed = ?", false).Count(&s.ConfirmedNotComing).Error; err != nil {
		return nil, err
	}
	if err := approved().Where("attendance_confirmed IS NULL").Count(&s.NotResponded).Error; err != nil {
		return nil, err
	}
	if err := approved().Where("checked_in = ?", true).Count(&s.CheckedIn).Error; err != nil {
		return nil, err
	}
	s.NotCheckedIn = s.TotalApproved - s.CheckedIn

	sum := func(column string, dst *int64) error {
		var v *int64
		err := approved().Select("SUM(" + column + ")").Scan(&v).Error
		if err != nil {
			return err
		}
		if v != nil {
			*dst = *v
		}
		return nil
	}
	if err := sum("plus_one", &s.TotalPlusOneAllowed); err != nil {
		return nil, err
	}
	if err := sum("confirmed_guests", &s.TotalConfirmedGuest); err != nil {
		return nil, err
	}
	if err := sum("actual_guests", &s.TotalActualGuests); err != nil {
		return nil, err
	}

	s.ExpectedTotal = s.TotalApproved + s.TotalPlusOneAllowed
	s.ActualTotal = s.CheckedIn + s.TotalActualGuests
	return &s, nil
}

var _ IEventInviteeRepository = (*EventInviteeRepository)(nil)
