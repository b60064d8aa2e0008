package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// 金额在 JSON 中输出为数字而不是字符串
	decimal.MarshalJSONWithoutQuotes = true
}

// Expense 消费记录模型
// UserUID 为外部身份服务签发的用户标识，创建后不可变更，
// 所有查询都以它为租户边界
type Expense struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	UserUID   string          `json:"-" gorm:"column:user_uid;size:128;index;not null"`
	Title     string          `json:"title" gorm:"size:100;not null"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Category  string          `json:"category" gorm:"size:50;index;not null"`
	Date      time.Time       `json:"date" gorm:"not null;index"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName 设置表名
func (Expense) TableName() string {
	return "expenses"
}

// Category 消费类别常量（固定枚举）
const (
	CategoryFood          = "Food"
	CategoryTravel        = "Travel"
	CategoryShopping      = "Shopping"
	CategoryEntertainment = "Entertainment"
	CategoryBills         = "Bills"
	CategoryHealthcare    = "Healthcare"
	CategoryEducation     = "Education"
	CategoryOther         = "Other"
)

// GetCategories 获取所有消费类别
func GetCategories() []string {
	return []string{
		CategoryFood,
		CategoryTravel,
		CategoryShopping,
		CategoryEntertainment,
		CategoryBills,
		CategoryHealthcare,
		CategoryEducation,
		CategoryOther,
	}
}

// IsValidCategory 判断类别是否在固定枚举内
func IsValidCategory(name string) bool {
	for _, c := range GetCategories() {
		if c == name {
			return true
		}
	}
	return false
}
