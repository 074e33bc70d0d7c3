// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// Category 对应于数据库中的 'templates' 表，是一组有序问题的模板。
// 对外一律使用 CategoryID（slug）寻址，ID 只在存储层内部使用。
type Category struct {
	// ID 是存储层分配的主键，对外不可见。
	ID string `gorm:"type:varchar(36);primaryKey" json:"-"`
	// CategoryID 是全局唯一且创建后不可变的 slug。
	CategoryID  string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"categoryId"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	OrderIndex  int       `gorm:"not null;default:0" json:"orderIndex"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Category) TableName() string {
	return "templates"
}

// Question 对应于 'questions' 表，完全归属于某个 Category。
type Question struct {
	ID         string `gorm:"type:varchar(36);primaryKey" json:"id"`
	TemplateID string `gorm:"type:varchar(36);index;not null" json:"-"`
	Text       string `gorm:"type:text;not null" json:"text"`
	OrderIndex int    `gorm:"not null" json:"orderIndex"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Question) TableName() string {
	return "questions"
}
