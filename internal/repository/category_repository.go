// Package repository 包含了所有与数据库交互的逻辑。
package repository

import (
	"context"
	"drafting-wizard-go/internal/model"
	"errors"

	"gorm.io/gorm"
)

// CategoryRepository 接口定义了分类（模板）的数据操作方法。
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	CreateWithQuestions(ctx context.Context, category *model.Category, questions []model.Question) error
	FindAll(ctx context.Context) ([]model.Category, error)
	FindByCategoryID(ctx context.Context, categoryID string) (*model.Category, error)
	ExistsByCategoryID(ctx context.Context, categoryID string) (bool, error)
	UpdateOrderIndex(ctx context.Context, id string, orderIndex int) error
	DeleteWithDependents(ctx context.Context, id string) error
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建一个新的 CategoryRepository 实例。
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create 插入一个新的分类记录，OrderIndex 取当前最大值加一，使新分类排在已有分类之后。
// 调用方传入的 OrderIndex 被忽略，只能通过 UpdateOrderIndex 修改。
func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int
		err := tx.Model(&model.Category{}).Select("COALESCE(MAX(order_index), -1) + 1").Scan(&next).Error
		if err != nil {
			return err
		}
		category.OrderIndex = next
		return tx.Create(category).Error
	})
}

// CreateWithQuestions 在同一个事务中写入分类及其初始问题，用于内置分类的初始化。
func (r *categoryRepository) CreateWithQuestions(ctx context.Context, category *model.Category, questions []model.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(category).Error; err != nil {
			return err
		}
		if len(questions) == 0 {
			return nil
		}
		for i := range questions {
			questions[i].TemplateID = category.ID
		}
		return tx.Create(&questions).Error
	})
}

// FindAll 按 order_index 升序、创建时间升序返回全部分类。
func (r *categoryRepository) FindAll(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).Order("order_index asc").Order("created_at asc").Find(&categories).Error
	return categories, err
}

// FindByCategoryID 根据 slug 查找分类，找不到时返回 gorm.ErrRecordNotFound。
func (r *categoryRepository) FindByCategoryID(ctx context.Context, categoryID string) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).Where("category_id = ?", categoryID).First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// ExistsByCategoryID 检查 slug 是否已被占用。
func (r *categoryRepository) ExistsByCategoryID(ctx context.Context, categoryID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Category{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count > 0, err
}

// UpdateOrderIndex 只更新分类的显示顺序。
func (r *categoryRepository) UpdateOrderIndex(ctx context.Context, id string, orderIndex int) error {
	return r.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", id).Update("order_index", orderIndex).Error
}

// DeleteWithDependents 在一个事务中先删除问题和标签关联，再删除分类本身。
// 生成记录（draft）及其标签不受影响。
func (r *categoryRepository) DeleteWithDependents(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", id).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("category_id = ?", id).Delete(&model.CategoryTag{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Category{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// IsNotFound 判断错误是否为记录不存在。
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
