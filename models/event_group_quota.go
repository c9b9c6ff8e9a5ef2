package models

// EventGroupQuota bir grubun bir etkinlik için en fazla kaç reddedilmemiş
// davetiye tutabileceğini belirler. Quota nil ise sınırsızdır. Kullanım
// sayısı saklanmaz; EventInvitee kayıtlarından canlı sayılır, böylece
// red/yeniden gönderim sonrası ayrıca düşüm muhasebesi gerekmez.
type EventGroupQuota struct {
	BaseModel
	EventID        uint `gorm:"not null;index;index:uq_event_group_quota,unique" json:"event_id"`
	InviterGroupID uint `gorm:"not null;index;index:uq_event_group_quota,unique" json:"inviter_group_id"`
	Quota          *int `json:"quota"` // nil = sınırsız

	Event        *Event        `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
	InviterGroup *InviterGroup `gorm:"foreignKey:InviterGroupID;constraint:OnDelete:CASCADE" json:"-"`
}
