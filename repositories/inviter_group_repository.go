package repositories

import (
	"context"
	"errors"

	"davetli.app/configs"
	"davetli.app/models"

	"gorm.io/gorm"
)

// IInviterGroupRepository davet eden grupları.
type IInviterGroupRepository interface {
	Create(ctx context.Context, g *models.InviterGroup) error
	FindByID(ctx context.Context, id uint) (*models.InviterGroup, error)
	FindByName(ctx context.Context, name string) (*models.InviterGroup, error)
	FindAll(ctx context.Context) ([]models.InviterGroup, error)
	Update(ctx context.Context, g *models.InviterGroup) error
	Delete(ctx context.Context, id uint) error
}

type InviterGroupRepository struct {
	base *BaseRepository[models.InviterGroup]
	db   *gorm.DB
}

func NewInviterGroupRepository() IInviterGroupRepository {
	db := configs.GetDB()
	return &InviterGroupRepository{base: NewBaseRepository[models.InviterGroup](db), db: db}
}

func NewInviterGroupRepositoryTx(tx *gorm.DB) IInviterGroupRepository {
	return &InviterGroupRepository{base: NewBaseRepository[models.InviterGroup](tx), db: tx}
}

func (r *InviterGroupRepository) Create(ctx context.Context, g *models.InviterGroup) error {
	return r.base.Create(ctx, g)
}

func (r *InviterGroupRepository) FindByID(ctx context.Context, id uint) (*models.InviterGroup, error) {
	return r.base.FindByID(ctx, id)
}

func (r *InviterGroupRepository) FindByName(ctx context.Context, name string) (*models.InviterGroup, error) {
	var g models.InviterGroup
	err := getDBFromContext(ctx, r.db).Where("LOWER(name) = LOWER(?)", name).First(&g).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *InviterGroupRepository) FindAll(ctx context.Context) ([]models.InviterGroup, error) {
	var list []models.InviterGroup
	err := getDBFromContext(ctx, r.db).Order("name asc").Find(&list).Error
	return list, err
}

func (r *InviterGroupRepository) Update(ctx context.Context, g *models.InviterGroup) error {
	return r.base.Save(ctx, g)
}

func (r *InviterGroupRepository) Delete(ctx context.Context, id uint) error {
	return getDBFromContext(ctx, r.db).Delete(&models.InviterGroup{}, id).Error
}

var _ IInviterGroupRepository = (*InviterGroupRepository)(nil)
