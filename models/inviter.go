package models

// Inviter daveti yapan gerçek kişiyi temsil eder. Davetiyeyi sisteme giren
// User'dan farklıdır; en fazla bir gruba bağlıdır.
type Inviter struct {
	BaseModel
	Name           string `gorm:"type:varchar(150);not null;index" json:"name"`
	InviterGroupID *uint  `gorm:"index" json:"inviter_group_id"`

	InviterGroup *InviterGroup `gorm:"foreignKey:InviterGroupID" json:"-"`
}
