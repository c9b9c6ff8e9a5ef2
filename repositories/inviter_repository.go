package repositories

import (
	"context"
	"errors"

	"davetli.app/configs"
	"davetli.app/models"

	"gorm.io/gorm"
)

// IInviterRepository davet eden kişiler.
type IInviterRepository interface {
	Create(ctx context.Context, inv *models.Inviter) error
	FindByID(ctx context.Context, id uint) (*models.Inviter, error)
	FindByNameInGroup(ctx context.Context, name string, groupID *uint) (*models.Inviter, error)
	FindAll(ctx context.Context, groupID *uint) ([]models.Inviter, error)
	Update(ctx context.Context, inv *models.Inviter) error
	Delete(ctx context.Context, id uint) error
}

type InviterRepository struct {
	base *BaseRepository[models.Inviter]
	db   *gorm.DB
}

func NewInviterRepository() IInviterRepository {
	db := configs.GetDB()
	return &InviterRepository{base: NewBaseRepository[models.Inviter](db), db: db}
}

func NewInviterRepositoryTx(tx *gorm.DB) IInviterRepository {
	return &InviterRepository{base: NewBaseRepository[models.Inviter](tx), db: tx}
}

func (r *InviterRepository) Create(ctx context.Context, inv *models.Inviter) error {
	return r.base.Create(ctx, inv)
}

func (r *InviterRepository) FindByID(ctx context.Context, id uint) (*models.Inviter, error) {
	return r.base.FindByID(ctx, id)
}

// FindByNameInGroup grup kapsamı içinde isme göre arar; groupID nil ise
// grupsuz kayıtlar arasında bakılır.
func (r *InviterRepository) FindByNameInGroup(ctx context.Context, name string, groupID *uint) (*models.Inviter, error) {
	query := getDBFromContext(ctx, r.db).Where("LOWER(name) = LOWER(?)", name)
	if groupID != nil {
		query = query.Where("inviter_group_id = ?", *groupID)
	} else {
		query = query.Where("inviter_group_id IS NULL")
	}
	var inv models.Inviter
	err := query.First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *InviterRepository) FindAll(ctx context.Context, groupID *uint) ([]models.Inviter, error) {
	query := getDBFromContext(ctx, r.db).Preload("InviterGroup")
	if groupID != nil {
		query = query.Where("inviter_group_id = ?", *groupID)
	}
	var list []models.Inviter
	err := query.Order("name asc").Find(&list).Error
	return list, err
}

func (r *InviterRepository) Update(ctx context.Context, inv *models.Inviter) error {
	return r.base.Save(ctx, inv)
}

func (r *InviterRepository) Delete(ctx context.Context, id uint) error {
	return getDBFromContext(ctx, r.db).Delete(&models.Inviter{}, id).Error
}

var _ IInviterRepository = (*InviterRepository)(nil)
