package model

import (
	"time"

	"gorm.io/datatypes"
)

// AnswerItem 是一次回答的快照：问题 ID、问题文本和回答正文。
type AnswerItem struct {
	QuestionID string `json:"questionId"`
	Text       string `json:"text"`
	Answer     string `json:"answer"`
}

// GenerationLog 对应于 'generation_logs' 表，即一份 draft。
// 写入后不可修改，只能在之后追加标签关联。
type GenerationLog struct {
	ID         string                          `gorm:"type:varchar(36);primaryKey" json:"id"`
	CategoryID string                          `gorm:"type:varchar(255);index;not null" json:"categoryId"`
	Markdown   string                          `gorm:"type:longtext;not null" json:"markdown"`
	Answers    datatypes.JSONSlice[AnswerItem] `gorm:"type:json" json:"answers"`
	CreatedAt  time.Time                       `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (GenerationLog) TableName() string {
	return "generation_logs"
}

// AllModels 返回需要迁移的全部模型，供启动时和测试中的 AutoMigrate 使用。
func AllModels() []interface{} {
	return []interface{}{
		&Category{},
		&Question{},
		&Tag{},
		&CategoryTag{},
		&DraftTag{},
		&GenerationLog{},
	}
}
