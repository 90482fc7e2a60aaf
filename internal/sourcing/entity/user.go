package entity

import "time"

// User 系统用户
// 采购核心只关心异常预警的通知对象（管理员），账号体系由统一登录服务负责。
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	Username     string    `json:"username" gorm:"size:100;uniqueIndex;not null"`
	Name         string    `json:"name" gorm:"size:100"`
	Email        string    `json:"email" gorm:"size:200"`
	FeishuUserID string    `json:"feishu_user_id" gorm:"size:64"`
	Role         string    `json:"role" gorm:"size:20;default:member"` // admin/member
	Status       string    `json:"status" gorm:"size:20;default:active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "sourcing_users"
}
