package model

import "time"

// Tag 对应于 'tags' 表。Name 全局唯一且区分大小写，MySQL 下该列使用 utf8mb4_bin，见 database.InitMySQL。
type Tag struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Color     string    `gorm:"type:varchar(32);not null" json:"color"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Tag) TableName() string {
	return "tags"
}

// CategoryTag 是分类与标签之间的多对多关联，以分类的存储 ID 作为 owner。
type CategoryTag struct {
	CategoryID string `gorm:"type:varchar(36);primaryKey"`
	TagID      string `gorm:"type:varchar(36);primaryKey;index"`
}

func (CategoryTag) TableName() string {
	return "category_tags"
}

// DraftTag 是生成记录与标签之间的多对多关联。
type DraftTag struct {
	DraftID string `gorm:"type:varchar(36);primaryKey"`
	TagID   string `gorm:"type:varchar(36);primaryKey;index"`
}

func (DraftTag) TableName() string {
	return "draft_tags"
}
