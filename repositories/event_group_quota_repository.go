package repositories

import (
	"context"
	"errors"

	"davetli.app/configs"
	"davetli.app/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IEventGroupQuotaRepository etkinlik-grup kontenjan kayıtları.
type IEventGroupQuotaRepository interface {
	Find(ctx context.Context, eventID, groupID uint) (*models.EventGroupQuota, error)
	FindForEvent(ctx context.Context, eventID uint) ([]models.EventGroupQuota, error)
	Upsert(ctx context.Context, q *models.EventGroupQuota) error
	Delete(ctx context.Context, eventID, groupID uint) error
}

type EventGroupQuotaRepository struct {
	db *gorm.DB
}

func NewEventGroupQuotaRepository() IEventGroupQuotaRepository {
	return &EventGroupQuotaRepository{db: configs.GetDB()}
}

func NewEventGroupQuotaRepositoryTx(tx *gorm.DB) IEventGroupQuotaRepository {
	return &EventGroupQuotaRepository{db: tx}
}

func (r *EventGroupQuotaRepository) Find(ctx context.Context, eventID, groupID uint) (*models.EventGroupQuota, error) {
	var q models.EventGroupQuota
	err := getDBFromContext(ctx, r.db).
		Where("event_id = ? AND inviter_group_id = ?", eventID, groupID).
		First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (r *EventGroupQuotaRepository) FindForEvent(ctx context.Context, eventID uint) ([]models.EventGroupQuota, error) {
	var list []models.EventGroupQuota
	err := getDBFromContext(ctx, r.db).Preload("InviterGroup").
		Where("event_id = ?", eventID).
		Order("inviter_group_id asc").
		Find(&list).Error
	return list, err
}

// Upsert (event_id, inviter_group_id) üzerinde tekilleştirerek yazar.
func (r *EventGroupQuotaRepository) Upsert(ctx context.Context, q *models.EventGroupQuota) error {
	if q == nil || q.EventID == 0 || q.InviterGroupID == 0 {
		return errors.New("geçersiz kontenjan verisi")
	}
	return getDBFromContext(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "inviter_group_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quota", "updated_at"}),
	}).Create(q).Error
}

func (r *EventGroupQuotaRepository) Delete(ctx context.Context, eventID, groupID uint) error {
	return getDBFromContext(ctx, r.db).
		Where("event_id = ? AND inviter_group_id = ?", eventID, groupID).
		Delete(&models.EventGroupQuota{}).Error
}

var _ IEventGroupQuotaRepository = (*EventGroupQuotaRepository)(nil)
