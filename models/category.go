package models

// Category davetli kategorisi (örn. protokol seviyesi).
type Category struct {
	BaseModel
	Name string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
}
