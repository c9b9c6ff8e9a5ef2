package repositories

import (
	"context"
	"errors"

	"davetli.app/configs"
	"davetli.app/models"

	"gorm.io/gorm"
)

// IUserRepository izin guard'larının ihtiyaç duyduğu kullanıcı sorguları.
type IUserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindActiveAdmins(ctx context.Context) ([]models.User, error)
	FindActiveDirectorsInGroup(ctx context.Context, groupID uint) ([]models.User, error)
	Update(ctx context.Context, u *models.User) error
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository() IUserRepository {
	return &UserRepository{db: configs.GetDB()}
}

func NewUserRepositoryTx(tx *gorm.DB) IUserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if u == nil || u.Username == "" {
		return errors.New("geçersiz kullanıcı verisi")
	}
	return getDBFromContext(ctx, r.db).Create(u).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	if id == 0 {
		return nil, errors.New("geçersiz kullanıcı ID")
	}
	var u models.User
	err := getDBFromContext(ctx, r.db).First(&u, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := getDBFromContext(ctx, r.db).Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindActiveAdmins(ctx context.Context) ([]models.User, error) {
	var list []models.User
	err := getDBFromContext(ctx, r.db).
		Where("role = ? AND is_active = ?", models.RoleAdmin, true).
		Find(&list).Error
	return list, err
}

func (r *UserRepository) FindActiveDirectorsInGroup(ctx context.Context, groupID uint) ([]models.User, error) {
	var list []models.User
	err := getDBFromContext(ctx, r.db).
		Where("role = ? AND is_active = ? AND inviter_group_id = ?", models.RoleDirector, true, groupID).
		Find(&list).Error
	return list, err
}

func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	if u == nil || u.ID == 0 {
		return errors.New("güncellenecek kullanıcı geçerli değil")
	}
	return getDBFromContext(ctx, r.db).Save(u).Error
}

var _ IUserRepository = (*UserRepository)(nil)
