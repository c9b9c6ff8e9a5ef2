package models

import "time"

// AuditLog her durum geçişi için yazılan yapılandırılmış iz kaydı.
// Geçişle aynı transaction içinde yazılır.
type AuditLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      *uint     `gorm:"index" json:"user_id"` // portal/PIN işlemlerinde nil
	Action      string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityTable string    `gorm:"column:table_name;type:varchar(50);not null" json:"table_name"`
	RecordID    *uint     `json:"record_id"`
	OldValue    string    `gorm:"type:text" json:"old_value,omitempty"`
	NewValue    string    `gorm:"type:text" json:"new_value,omitempty"`
	IPAddress   string    `gorm:"type:varchar(45)" json:"ip_address,omitempty"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
}

// TableName gorm tablo adı (audit_logs yerine teklik için audit_log).
func (AuditLog) TableName() string { return "audit_log" }
