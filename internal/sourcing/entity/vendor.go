package entity

import "time"

// Vendor 供应商
type Vendor struct {
	ID          string     `json:"id" gorm:"primaryKey;size:32"`
	Company     string     `json:"company" gorm:"size:200;not null"`
	ContactName string     `json:"contact_name" gorm:"size:100"`
	Address     string     `json:"address" gorm:"size:500"`
	Phone       string     `json:"phone" gorm:"size:50"`
	Email       string     `json:"email" gorm:"size:200"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at" gorm:"index"`
}

func (Vendor) TableName() string {
	return "sourcing_vendors"
}
