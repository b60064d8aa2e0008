package models

import (
	"time"
)

// User 用户模型
// 账号与密码由外部身份服务维护，这里只在首次登录成功后
// 懒创建一条本地记录，用于邮件等场景
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UID       string    `json:"uid" gorm:"column:uid;size:128;uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"size:100"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 设置表名
func (User) TableName() string {
	return "users"
}
