package repositories

import (
	"context"
	"errors"

	"davetli.app/configs"
	"davetli.app/models"

	"gorm.io/gorm"
)

// IAuditLogRepository iz kayıtları. Yazma işlemi geçişle aynı transaction
// içinde çağrılır.
type IAuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	FindForRecord(ctx context.Context, tableName string, recordID uint, limit int) ([]models.AuditLog, error)
}

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository() IAuditLogRepository {
	return &AuditLogRepository{db: configs.GetDB()}
}

func NewAuditLogRepositoryTx(tx *gorm.DB) IAuditLogRepository {
	return &AuditLogRepository{db: tx}
}

func (r *AuditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	if entry == nil || entry.Action == "" || entry.EntityTable == "" {
		return errors.New("geçersiz audit kaydı")
	}
	return getDBFromContext(ctx, r.db).Create(entry).Error
}

func (r *AuditLogRepository) FindForRecord(ctx context.Context, tableName string, recordID uint, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var list []models.AuditLog
	err := getDBFromContext(ctx, r.db).
		Where("table_name = ? AND record_id = ?", tableName, recordID).
		Order("timestamp desc").Limit(limit).
		Find(&list).Error
	return list, err
}

var _ IAuditLogRepository = (*AuditLogRepository)(nil)
