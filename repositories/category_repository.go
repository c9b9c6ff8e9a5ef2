package repositories

import (
	"context"
	"errors"

	"davetli.app/configs"
	"davetli.app/models"

	"gorm.io/gorm"
)

// ICategoryRepository davetli kategorileri.
type ICategoryRepository interface {
	Create(ctx context.Context, c *models.Category) error
	FindByID(ctx context.Context, id uint) (*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	FindAll(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id uint) error
}

type CategoryRepository struct {
	base *BaseRepository[models.Category]
	db   *gorm.DB
}

func NewCategoryRepository() ICategoryRepository {
	db := configs.GetDB()
	return &CategoryRepository{base: NewBaseRepository[models.Category](db), db: db}
}

func NewCategoryRepositoryTx(tx *gorm.DB) ICategoryRepository {
	return &CategoryRepository{base: NewBaseRepository[models.Category](tx), db: tx}
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	return r.base.Create(ctx, c)
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uint) (*models.Category, error) {
	return r.base.FindByID(ctx, id)
}

func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	err := getDBFromContext(ctx, r.db).Where("LOWER(name) = LOWER(?)", name).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]models.Category, error) {
	var list []models.Category
	err := getDBFromContext(ctx, r.db).Order("name asc").Find(&list).Error
	return list, err
}

func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) error {
	return r.base.Save(ctx, c)
}

func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	return getDBFromContext(ctx, r.db).Delete(&models.Category{}, id).Error
}

var _ ICategoryRepository = (*CategoryRepository)(nil)
