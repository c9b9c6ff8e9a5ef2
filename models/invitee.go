package models

// Invitee davet edilebilecek kişiyi (kontak) temsil eder.
// Telefon grup içinde benzersizdir, global değil: aynı numara farklı
// gruplarda ayrı kontak kaydı olarak bulunabilir. Gruplar arası çakışma
// davetiye katmanında (EventInvitee submit) ele alınır.
type Invitee struct {
	BaseModel
	Name           string `gorm:"type:varchar(100);not null;index" json:"name"`
	Email          string `gorm:"type:varchar(150);not null;index" json:"email"`
	Phone          string `gorm:"type:varchar(30);not null;index:idx_invitee_group_phone,unique" json:"phone"`
	SecondaryPhone string `gorm:"type:varchar(30)" json:"secondary_phone,omitempty"`
	Title          string `gorm:"type:varchar(50)" json:"title,omitempty"`
	Address        string `gorm:"type:varchar(255)" json:"address,omitempty"`
	Position       string `gorm:"type:varchar(100)" json:"position,omitempty"`
	Company        string `gorm:"type:varchar(150)" json:"company,omitempty"`
	Notes          string `gorm:"type:text" json:"notes,omitempty"`
	PlusOne        int    `gorm:"default:0;not null" json:"plus_one"` // varsayılan misafir hakkı
	CategoryID     *uint  `gorm:"index" json:"category_id"`
	InviterGroupID *uint  `gorm:"index;index:idx_invitee_group_phone,unique" json:"inviter_group_id"`
	InviterID      *uint  `gorm:"index" json:"inviter_id"`

	Category     *Category     `gorm:"foreignKey:CategoryID" json:"-"`
	InviterGroup *InviterGroup `gorm:"foreignKey:InviterGroupID" json:"-"`
	Inviter      *Inviter      `gorm:"foreignKey:InviterID" json:"-"`
}
