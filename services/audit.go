package services

import (
	"context"
	"encoding/json"

	"davetli.app/configs/configslog"
	"davetli.app/models"
	"davetli.app/pkg/eventtime"
	"davetli.app/repositories"

	"go.uber.org/zap"
)

// auditEntry bir durum geçişinin iz kaydını transaction context'i ile yazar.
// old/new değerleri JSON'a çevrilir; seri hale getirilemeyen değer boş yazılır.
func auditEntry(ctx context.Context, repo repositories.IAuditLogRepository, userID *uint, action, table string, recordID uint, oldValue, newValue interface{}, ip string) error {
	entry := &models.AuditLog{
		UserID:      userID,
		Action:      action,
		EntityTable: table,
		RecordID:    &recordID,
		OldValue:    marshalValue(oldValue),
		NewValue:    marshalValue(newValue),
		IPAddress:   ip,
		Timestamp:   eventtime.Now(),
	}
	if err := repo.Create(ctx, entry); err != nil {
		configslog.Log.Error("audit kaydı yazılamadı",
			zap.String("action", action), zap.Uint("record_id", recordID), zap.Error(err))
		return err
	}
	return nil
}

func marshalValue(v interface{}) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
