package repository

import (
	"context"
	"drafting-wizard-go/internal/model"

	"gorm.io/gorm"
)

// AssociationRepository 定义了 owner（分类或 draft）与标签之间多对多关联的数据操作。
type AssociationRepository interface {
	FindTagIDs(ctx context.Context, ownerID string) ([]string, error)
	FindTagIDsByOwners(ctx context.Context, ownerIDs []string) (map[string][]string, error)
	Replace(ctx context.Context, ownerID string, tagIDs []string) error
}

// associationRepository 是 AssociationRepository 的 GORM 实现，T 为关联表模型。
type associationRepository[T any] struct {
	db          *gorm.DB
	ownerColumn string
	newLink     func(ownerID, tagID string) T
}

// NewCategoryTagRepository 创建分类-标签关联仓库，owner 为分类的存储 ID。
func NewCategoryTagRepository(db *gorm.DB) AssociationRepository {
	return &associationRepository[model.CategoryTag]{
		db:          db,
		ownerColumn: "category_id",
		newLink: func(ownerID, tagID string) model.CategoryTag {
			return model.CategoryTag{CategoryID: ownerID, TagID: tagID}
		},
	}
}

// NewDraftTagRepository 创建 draft-标签关联仓库，owner 为生成记录 ID。
func NewDraftTagRepository(db *gorm.DB) AssociationRepository {
	return &associationRepository[model.DraftTag]{
		db:          db,
		ownerColumn: "draft_id",
		newLink: func(ownerID, tagID string) model.DraftTag {
			return model.DraftTag{DraftID: ownerID, TagID: tagID}
		},
	}
}

// FindTagIDs 返回 owner 当前关联的全部标签 ID。
func (r *associationRepository[T]) FindTagIDs(ctx context.Context, ownerID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(new(T)).
		Where(r.ownerColumn+" = ?", ownerID).
		Order("tag_id asc").
		Pluck("tag_id", &ids).Error
	return ids, err
}

// FindTagIDsByOwners 批量读取多个 owner 的标签 ID。
func (r *associationRepository[T]) FindTagIDsByOwners(ctx context.Context, ownerIDs []string) (map[string][]string, error) {
	result := make(map[string][]string, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		OwnerID string
		TagID   string
	}
	err := r.db.WithContext(ctx).
		Model(new(T)).
		Select(r.ownerColumn+" AS owner_id, tag_id").
		Where(r.ownerColumn+" IN ?", ownerIDs).
		Order("tag_id asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.OwnerID] = append(result[row.OwnerID], row.TagID)
	}
	return result, nil
}

// Replace 在一个事务中清空 owner 的全部关联再写入新集合。
// 输入中的重复 ID 只写入一次，因此结果与输入顺序无关。
func (r *associationRepository[T]) Replace(ctx context.Context, ownerID string, tagIDs []string) error {
	seen := make(map[string]struct{}, len(tagIDs))
	links := make([]T, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		if _, ok := seen[tagID]; ok {
			continue
		}
		seen[tagID] = struct{}{}
		links = append(links, r.newLink(ownerID, tagID))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(r.ownerColumn+" = ?", ownerID).Delete(new(T)).Error; err != nil {
			return err
		}
		if len(links) == 0 {
			return nil
		}
		return tx.Create(&links).Error
	})
}
