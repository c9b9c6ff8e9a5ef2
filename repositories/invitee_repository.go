package repositories

import (
	"context"
	"errors"

	"davetli.app/configs"
	"davetli.app/configs/configslog"
	"davetli.app/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IInviteeRepository kontak (davetli) veritabanı işlemleri için arayüz.
type IInviteeRepository interface {
	Create(ctx context.Context, invitee *models.Invitee) error
	FindByID(ctx context.Context, id uint) (*models.Invitee, error)
	FindByEmailInGroup(ctx context.Context, email string, groupID *uint) (*models.Invitee, error)
	FindByPhoneInGroup(ctx context.Context, phone string, groupID *uint) (*models.Invitee, error)
	FindAll(ctx context.Context) ([]models.Invitee, error)
	Search(ctx context.Context, q string, groupID *uint, limit int) ([]models.Invitee, error)
	Update(ctx context.Context, invitee *models.Invitee) error
	Delete(ctx context.Context, invitee *models.Invitee) error
}

// InviteeRepository IInviteeRepository arayüzünü uygular.
type InviteeRepository struct {
	db   *gorm.DB
	base *BaseRepository[models.Invitee]
}

// NewInviteeRepository yeni bir InviteeRepository örneği oluşturur.
func NewInviteeRepository() IInviteeRepository {
	db := configs.GetDB()
	return &InviteeRepository{db: db, base: NewBaseRepository[models.Invitee](db)}
}

// NewInviteeRepositoryTx transaction'lı repository.
func NewInviteeRepositoryTx(tx *gorm.DB) IInviteeRepository {
	return &InviteeRepository{db: tx, base: NewBaseRepository[models.Invitee](tx)}
}

func (r *InviteeRepository) getDB(ctx context.Context) *gorm.DB {
	return getDBFromContext(ctx, r.db)
}

func (r *InviteeRepository) Create(ctx context.Context, invitee *models.Invitee) error {
	if invitee == nil || invitee.Name == "" {
		return errors.New("geçersiz davetli verisi")
	}
	return r.getDB(ctx).Create(invitee).Error
}

func (r *InviteeRepository) FindByID(ctx context.Context, id uint) (*models.Invitee, error) {
	if id == 0 {
		return nil, errors.New("geçersiz Invitee ID")
	}
	var invitee models.Invitee
	err := r.getDB(ctx).Preload("Category").Preload("InviterGroup").Preload("Inviter").First(&invitee, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("InviteeRepository.FindByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &invitee, nil
}

// FindByEmailInGroup e-postayı grup kapsamında arar; groupID nil ise tüm
// kayıtlarda arar.
func (r *InviteeRepository) FindByEmailInGroup(ctx context.Context, email string, groupID *uint) (*models.Invitee, error) {
	query := r.getDB(ctx).Where("email = ?", email)
	if groupID != nil {
		query = query.Where("inviter_group_id = ?", *groupID)
	}
	var invitee models.Invitee
	err := query.First(&invitee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &invitee, nil
}

// FindByPhoneInGroup telefonu grup kapsamında arar. Telefon grup içinde
// benzersizdir; global değil.
func (r *InviteeRepository) FindByPhoneInGroup(ctx context.Context, phone string, groupID *uint) (*models.Invitee, error) {
	query := r.getDB(ctx).Where("phone = ?", phone)
	if groupID != nil {
		query = query.Where("inviter_group_id = ?", *groupID)
	}
	var invitee models.Invitee
	err := query.First(&invitee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &invitee, nil
}

func (r *InviteeRepository) FindAll(ctx context.Context) ([]models.Invitee, error) {
	var invitees []models.Invitee
	err := r.getDB(ctx).Preload("Category").Preload("InviterGroup").Order("name asc").Find(&invitees).Error
	return invitees, err
}

// Search kontak araması; groupID verilirse o grupla sınırlanır.
func (r *InviteeRepository) Search(ctx context.Context, q string, groupID *uint, limit int) ([]models.Invitee, error) {
	if limit <= 0 {
		limit = 50
	}
	term := "%" + q + "%"
	query := r.getDB(ctx).
		Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?) OR phone LIKE ?", term, term, term)
	if groupID != nil {
		query = query.Where("inviter_group_id = ?", *groupID)
	}
	var invitees []models.Invitee
	err := query.Order("name asc").Limit(limit).Find(&invitees).Error
	return invitees, err
}

func (r *InviteeRepository) Update(ctx context.Context, invitee *models.Invitee) error {
	if invitee == nil || invitee.ID == 0 {
		return errors.New("güncellenecek davetli geçerli değil")
	}
	return r.getDB(ctx).Save(invitee).Error
}

func (r *InviteeRepository) Delete(ctx context.Context, invitee *models.Invitee) error {
	if invitee == nil || invitee.ID == 0 {
		return errors.New("silinecek davetli geçerli değil")
	}
	return r.getDB(ctx).Delete(invitee).Error
}

var _ IInviteeRepository = (*InviteeRepository)(nil)
