package repository

import (
	"context"
	"drafting-wizard-go/internal/model"
	"time"

	"gorm.io/gorm"
)

// QuestionRepository 接口定义了问题列表的数据操作方法。
// 问题从不单独修改，只能整体替换。
type QuestionRepository interface {
	FindByTemplateID(ctx context.Context, templateID string) ([]model.Question, error)
	CountByTemplateIDs(ctx context.Context, templateIDs []string) (map[string]int64, error)
	Replace(ctx context.Context, templateID string, questions []model.Question) error
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository 创建一个新的 QuestionRepository 实例。
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

// FindByTemplateID 按 order_index 升序返回分类下的问题，order_index 相同时按 id 排序。
func (r *questionRepository) FindByTemplateID(ctx context.Context, templateID string) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.WithContext(ctx).
		Where("template_id = ?", templateID).
		Order("order_index asc").
		Order("id asc").
		Find(&questions).Error
	return questions, err
}

// CountByTemplateIDs 一次性统计多个分类的问题数量，避免 N+1 查询。
func (r *questionRepository) CountByTemplateIDs(ctx context.Context, templateIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(templateIDs))
	if len(templateIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		TemplateID string
		Total      int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Question{}).
		Select("template_id, COUNT(*) AS total").
		Where("template_id IN ?", templateIDs).
		Group("template_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.TemplateID] = row.Total
	}
	return counts, nil
}

// Replace 在一个事务中删除分类的全部旧问题、写入新列表，并刷新分类的 updated_at。
func (r *questionRepository) Replace(ctx context.Context, templateID string, questions []model.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", templateID).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		if len(questions) > 0 {
			for i := range questions {
				questions[i].TemplateID = templateID
			}
			if err := tx.Create(&questions).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.Category{}).Where("id = ?", templateID).Update("updated_at", time.Now()).Error
	})
}
