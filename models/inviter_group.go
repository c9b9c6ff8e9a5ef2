package models

// InviterGroup davet eden grupları (organizasyon birimi) temsil eder.
// Kontaklar, kontenjanlar ve direktör/organizatör kullanıcılar gruba bağlıdır.
type InviterGroup struct {
	BaseModel
	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`

	Inviters []Inviter `gorm:"foreignKey:InviterGroupID" json:"-"`
}
