package repository

import (
	"context"
	"drafting-wizard-go/internal/model"

	"gorm.io/gorm"
)

// DraftFilter 描述 draft 历史列表的可选过滤条件。
type DraftFilter struct {
	CategoryID string
	TagID      string
	Limit      int
}

// DraftRepository 接口定义了生成记录的数据操作方法。记录只追加，不提供更新。
type DraftRepository interface {
	Create(ctx context.Context, draft *model.GenerationLog) error
	FindByID(ctx context.Context, id string) (*model.GenerationLog, error)
	Exists(ctx context.Context, id string) (bool, error)
	FindAll(ctx context.Context, filter DraftFilter) ([]model.GenerationLog, error)
}

type draftRepository struct {
	db *gorm.DB
}

// NewDraftRepository 创建一个新的 DraftRepository 实例。
func NewDraftRepository(db *gorm.DB) DraftRepository {
	return &draftRepository{db: db}
}

// Create 写入一条新的生成记录。
func (r *draftRepository) Create(ctx context.Context, draft *model.GenerationLog) error {
	return r.db.WithContext(ctx).Create(draft).Error
}

// FindByID 根据 ID 查找生成记录。
func (r *draftRepository) FindByID(ctx context.Context, id string) (*model.GenerationLog, error) {
	var draft model.GenerationLog
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&draft).Error
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

// Exists 检查生成记录是否存在。
func (r *draftRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.GenerationLog{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// FindAll 按创建时间倒序返回生成记录，可按分类和标签过滤。
func (r *draftRepository) FindAll(ctx context.Context, filter DraftFilter) ([]model.GenerationLog, error) {
	var drafts []model.GenerationLog
	db := r.db.WithContext(ctx).Model(&model.GenerationLog{})
	if filter.CategoryID != "" {
		db = db.Where("category_id = ?", filter.CategoryID)
	}
	if filter.TagID != "" {
		sub := r.db.Model(&model.DraftTag{}).Select("draft_id").Where("tag_id = ?", filter.TagID)
		db = db.Where("id IN (?)", sub)
	}
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}
	err := db.Order("created_at desc").Order("id desc").Find(&drafts).Error
	return drafts, err
}
