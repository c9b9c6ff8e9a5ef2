package repositories

import (
	"context"
	"errors"
	"time"

	"davetli.app/configs"
	"davetli.app/configs/configslog"
	"davetli.app/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IEventRepository etkinlik veritabanı işlemleri için arayüz.
type IEventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id uint) (*models.Event, error)
	FindByCode(ctx context.Context, code string) (*models.Event, error)
	FindAll(ctx context.Context) ([]models.Event, error)
	FindActiveForGroup(ctx context.Context, groupID uint) ([]models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, event *models.Event) error
	ReplaceGroups(ctx context.Context, event *models.Event, groups []models.InviterGroup) error
	CodeExists(ctx context.Context, code string) (bool, error)
	// Toplu durum yenileme: dönüş değerleri etkilenen satır sayılarıdır.
	BulkMarkOngoing(ctx context.Context, now time.Time) (int64, error)
	BulkMarkEnded(ctx context.Context, now time.Time) (int64, error)
	// Yenileme öncesi diff almak isteyenler için geçiş adaylarının ID'leri.
	FindTransitioningIDs(ctx context.Context, now time.Time) (toOngoing, toEnded []uint, err error)
}

// EventRepository IEventRepository arayüzünü uygular.
type EventRepository struct {
	db *gorm.DB
}

// NewEventRepository yeni bir EventRepository örneği oluşturur.
func NewEventRepository() IEventRepository {
	return &EventRepository{db: configs.GetDB()}
}

// NewEventRepositoryTx transaction'lı repository.
func NewEventRepositoryTx(tx *gorm.DB) IEventRepository {
	return &EventRepository{db: tx}
}

func (r *EventRepository) getDB(ctx context.Context) *gorm.DB {
	return getDBFromContext(ctx, r.db)
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event == nil || event.Name == "" {
		return errors.New("geçersiz etkinlik verisi")
	}
	return r.getDB(ctx).Create(event).Error
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	if id == 0 {
		return nil, errors.New("geçersiz Event ID")
	}
	var event models.Event
	err := r.getDB(ctx).Preload("InviterGroups").First(&event, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("EventRepository.FindByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) FindByCode(ctx context.Context, code string) (*models.Event, error) {
	if code == "" {
		return nil, ErrNotFound
	}
	var event models.Event
	err := r.getDB(ctx).Preload("InviterGroups").Where("code = ?", code).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("EventRepository.FindByCode: DB error", zap.String("code", code), zap.Error(err))
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) FindAll(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := r.getDB(ctx).Preload("InviterGroups").Order("start_date desc").Find(&events).Error
	return events, err
}

// FindActiveForGroup gruba atanmış (veya is_all_groups) aktif etkinlikler.
func (r *EventRepository) FindActiveForGroup(ctx context.Context, groupID uint) ([]models.Event, error) {
	var events []models.Event
	err := r.getDB(ctx).Preload("InviterGroups").
		Where("status IN ?", []models.EventStatus{models.EventStatusUpcoming, models.EventStatusOngoing}).
		Where("is_all_groups = ? OR id IN (?)", true,
			r.getDB(ctx).Table("event_inviter_groups").Select("event_id").Where("inviter_group_id = ?", groupID)).
		Order("start_date asc").
		Find(&events).Error
	return events, err
}

func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	if event == nil || event.ID == 0 {
		return errors.New("güncellenecek etkinlik geçerli değil")
	}
	return r.getDB(ctx).Save(event).Error
}

func (r *EventRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if id == 0 {
		return errors.New("geçersiz Event ID")
	}
	result := r.getDB(ctx).Model(&models.Event{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, event *models.Event) error {
	if event == nil || event.ID == 0 {
		return errors.New("silinecek etkinlik geçerli değil")
	}
	return r.getDB(ctx).Delete(event).Error
}

func (r *EventRepository) ReplaceGroups(ctx context.Context, event *models.Event, groups []models.InviterGroup) error {
	return r.getDB(ctx).Model(event).Association("InviterGroups").Replace(groups)
}

func (r *EventRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.getDB(ctx).Model(&models.Event{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

// BulkMarkOngoing penceresi açılmış upcoming etkinlikleri ongoing yapar.
// Zaten doğru satırlara dokunmaz; her okumada çağrılabilir.
func (r *EventRepository) BulkMarkOngoing(ctx context.Context, now time.Time) (int64, error) {
	result := r.getDB(ctx).Model(&models.Event{}).
		Where("status = ?", models.EventStatusUpcoming).
		Where("start_date <= ? AND end_date > ?", now, now).
		Updates(map[string]interface{}{"status": models.EventStatusOngoing, "updated_at": now})
	return result.RowsAffected, result.Error
}

// BulkMarkEnded penceresi kapanmış upcoming/ongoing etkinlikleri ended yapar.
func (r *EventRepository) BulkMarkEnded(ctx context.Context, now time.Time) (int64, error) {
	result := r.getDB(ctx).Model(&models.Event{}).
		Where("status IN ?", []models.EventStatus{models.EventStatusUpcoming, models.EventStatusOngoing}).
		Where("end_date <= ?", now).
		Updates(map[string]interface{}{"status": models.EventStatusEnded, "updated_at": now})
	return result.RowsAffected, result.Error
}

// FindTransitioningIDs toplu yenilemenin değiştireceği satırların ID'lerini
// döndürür. Bildirim diff'i için yenilemeden ÖNCE çağrılmalıdır; toplu
// güncelleme yalnızca sayı döndürür.
func (r *EventRepository) FindTransitioningIDs(ctx context.Context, now time.Time) ([]uint, []uint, error) {
	db := r.getDB(ctx)

	var toOngoing []uint
	err := db.Model(&models.Event{}).
		Where("status = ?", models.EventStatusUpcoming).
		Where("start_date <= ? AND end_date > ?", now, now).
		Pluck("id", &toOngoing).Error
	if err != nil {
		return nil, nil, err
	}

	var toEnded []uint
	err = db.Model(&models.Event{}).
		Where("status IN ?", []models.EventStatus{models.EventStatusUpcoming, models.EventStatusOngoing}).
		Where("end_date <= ?", now).
		Pluck("id", &toEnded).Error
	if err != nil {
		return nil, nil, err
	}

	return toOngoing, toEnded, nil
}

var _ IEventRepository = (*EventRepository)(nil)
