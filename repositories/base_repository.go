package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound aranan kayıt bulunamadığında tüm repository'lerin döndürdüğü
// ortak hata.
var ErrNotFound = errors.New("kayıt bulunamadı")

// getDBFromContext transaction taşıyan context'ten tx'i çıkarır, yoksa
// verilen db'yi context'e bağlar.
func getDBFromContext(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok && tx != nil {
		return tx
	}
	return db.WithContext(ctx)
}

// lockForUpdate SELECT ... FOR UPDATE satır kilidi.
func lockForUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

// BaseRepository tek model için ortak CRUD yardımcıları.
type BaseRepository[T any] struct {
	db *gorm.DB
}

// NewBaseRepository yeni bir generik repository örneği oluşturur.
func NewBaseRepository[T any](db *gorm.DB) *BaseRepository[T] {
	return &BaseRepository[T]{db: db}
}

// FindByID ID ile tek kayıt bulur.
func (r *BaseRepository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	var entity T
	err := getDBFromContext(ctx, r.db).First(&entity, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

// Create yeni kayıt ekler.
func (r *BaseRepository[T]) Create(ctx context.Context, entity *T) error {
	return getDBFromContext(ctx, r.db).Create(entity).Error
}

// Save kaydı günceller.
func (r *BaseRepository[T]) Save(ctx context.Context, entity *T) error {
	return getDBFromContext(ctx, r.db).Save(entity).Error
}

// Delete kaydı kalıcı olarak siler.
func (r *BaseRepository[T]) Delete(ctx context.Context, entity *T) error {
	return getDBFromContext(ctx, r.db).Delete(entity).Error
}

// Count model için toplam kayıt sayısı.
func (r *BaseRepository[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	var entity T
	err := getDBFromContext(ctx, r.db).Model(&entity).Count(&count).Error
	return count, err
}
