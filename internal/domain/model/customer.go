package model

type Customer struct {
	BaseModel
	Name  string `gorm:"not null;type:varchar(100)" json:"name"`
	Email string `gorm:"uniqueIndex;not null;type:varchar(255)" json:"email"`
}
