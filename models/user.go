package models

// Role sistem kullanıcılarının rollerini tanımlar.
type Role string

const (
	RoleAdmin            Role = "admin"
	RoleDirector         Role = "director"
	RoleOrganizer        Role = "organizer"
	RoleCheckinAttendant Role = "checkin_attendant"
)

// User izin kontrollerinde kullanılan kullanıcı kaydı.
// Kimlik doğrulama bu çekirdeğin dışındadır; buradaki alanlar yalnızca
// rol/grup guard'ları için tutulur.
type User struct {
	BaseModel
	Username       string `gorm:"type:varchar(80);uniqueIndex;not null" json:"username"`
	FullName       string `gorm:"type:varchar(150)" json:"full_name"`
	Role           Role   `gorm:"type:varchar(20);not null;index" json:"role"`
	InviterGroupID *uint  `gorm:"index" json:"inviter_group_id"`
	IsActive       bool   `gorm:"default:true;not null;index" json:"is_active"`

	InviterGroup *InviterGroup `gorm:"foreignKey:InviterGroupID" json:"-"`
}

// IsAdmin kısayolu.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
