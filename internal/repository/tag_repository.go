package repository

import (
	"context"
	"drafting-wizard-go/internal/model"

	"gorm.io/gorm"
)

// TagRepository 接口定义了标签的数据操作方法。
type TagRepository interface {
	Create(ctx context.Context, tag *model.Tag) error
	FindAll(ctx context.Context) ([]model.Tag, error)
	FindByName(ctx context.Context, name string) (*model.Tag, error)
	FindBatchByIDs(ctx context.Context, ids []string) ([]model.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository 创建一个新的 TagRepository 实例。
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// Create 在数据库中插入一个新的标签记录。
func (r *tagRepository) Create(ctx context.Context, tag *model.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

// FindAll 按名称升序返回全部标签。
func (r *tagRepository) FindAll(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.WithContext(ctx).Order("name asc").Find(&tags).Error
	return tags, err
}

// FindByName 按名称精确查找标签，区分大小写。
// 不区分大小写的排序规则下 "name = ?" 可能命中多行，这里再逐字节比较一次。
func (r *tagRepository) FindByName(ctx context.Context, name string) (*model.Tag, error) {
	var candidates []model.Tag
	if err := r.db.WithContext(ctx).Where("name = ?", name).Find(&candidates).Error; err != nil {
		return nil, err
	}
	for i := range candidates {
		if candidates[i].Name == name {
			return &candidates[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// FindBatchByIDs 根据 ID 批量查找标签，按名称升序返回。不存在的 ID 直接忽略。
func (r *tagRepository) FindBatchByIDs(ctx context.Context, ids []string) ([]model.Tag, error) {
	var tags []model.Tag
	if len(ids) == 0 {
		return tags, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name asc").Find(&tags).Error
	return tags, err
}
