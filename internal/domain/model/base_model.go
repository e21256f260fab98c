package model

import (
	"time"
)

// BaseModel 所有實體共用的識別與時間欄位，以組合方式嵌入
type BaseModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"null" json:"updated_at"`
}
