package models

// NotificationType bildirim kategorisi.
type NotificationType string

const (
	NotifEventStatus         NotificationType = "event_status"
	NotifGroupAssignment     NotificationType = "group_assignment"
	NotifInvitationSubmitted NotificationType = "invitation_submitted"
	NotifInvitationApproved  NotificationType = "invitation_approved"
	NotifInvitationRejected  NotificationType = "invitation_rejected"
	NotifInvitationCancelled NotificationType = "invitation_cancelled"
	NotifSystem              NotificationType = "system"
)

// Notification kullanıcıya gösterilen uygulama içi bildirim. Gönderim
// mekanikleri (push vb.) bu çekirdeğin dışındadır; burada yalnızca tetikleme
// noktalarının ürettiği kayıtlar tutulur.
type Notification struct {
	BaseModel
	UserID  uint             `gorm:"not null;index" json:"user_id"`
	Title   string           `gorm:"type:varchar(200);not null" json:"title"`
	Message string           `gorm:"type:text;not null" json:"message"`
	Type    NotificationType `gorm:"type:varchar(50);not null;index" json:"type"`
	Link    string           `gorm:"type:varchar(500)" json:"link,omitempty"`
	IsRead  bool             `gorm:"default:false;not null;index" json:"is_read"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
