package service

import (
	"context"
	"drafting-wizard-go/internal/config"
	"drafting-wizard-go/internal/model"
	"drafting-wizard-go/internal/repository"
	"drafting-wizard-go/pkg/log"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CategoryView 是分类对外的视图，附带默认标记、问题数量和标签。
type CategoryView struct {
	CategoryID    string      `json:"categoryId"`
	Name          string      `json:"name"`
	Description   *string     `json:"description"`
	OrderIndex    int         `json:"orderIndex"`
	IsDefault     bool        `json:"isDefault"`
	QuestionCount int64       `json:"questionCount"`
	Tags          []model.Tag `json:"tags"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// QuestionInput 是整体替换问题列表时的单个输入项，ID 为空时自动生成。
type QuestionInput struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	OrderIndex int    `json:"orderIndex"`
}

// OrderAssignment 为一个分类指定新的 orderIndex。
type OrderAssignment struct {
	CategoryID string `json:"categoryId" binding:"required"`
	OrderIndex int    `json:"orderIndex"`
}

// ReorderFailure 记录单个排序项失败的原因。
type ReorderFailure struct {
	CategoryID string `json:"categoryId"`
	Reason     string `json:"reason"`
}

// ReorderResult 汇总批量排序的结果：每一项独立执行，成功与失败分别列出。
type ReorderResult struct {
	Applied []string         `json:"applied"`
	Failed  []ReorderFailure `json:"failed"`
}

// CategoryService 接口定义了分类和问题列表相关的业务操作。
type CategoryService interface {
	ListCategories(ctx context.Context) ([]CategoryView, error)
	CreateCategory(ctx context.Context, name string, description *string) (*CategoryView, error)
	DeleteCategory(ctx context.Context, categoryID string) error
	ReorderCategories(ctx context.Context, assignments []OrderAssignment) (*ReorderResult, error)
	GetQuestions(ctx context.Context, categoryID string) ([]model.Question, error)
	ReplaceQuestions(ctx context.Context, categoryID string, questions []QuestionInput) (int, error)
	GetCategoryTags(ctx context.Context, categoryID string) ([]model.Tag, error)
	SetCategoryTags(ctx context.Context, categoryID string, tagIDs []string) ([]model.Tag, error)
	SeedCategories(ctx context.Context, seeds []config.CategorySeed) error
	IsDefault(categoryID string) bool
}

type categoryService struct {
	categoryRepo    repository.CategoryRepository
	questionRepo    repository.QuestionRepository
	categoryTagRepo repository.AssociationRepository
	tagRepo         repository.TagRepository
	protected       map[string]struct{}
}

// NewCategoryService 创建一个新的 CategoryService 实例。
// protectedIDs 是不可删除的内置分类 ID 集合。
func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	questionRepo repository.QuestionRepository,
	categoryTagRepo repository.AssociationRepository,
	tagRepo repository.TagRepository,
	protectedIDs []string,
) CategoryService {
	protected := make(map[string]struct{}, len(protectedIDs))
	for _, id := range protectedIDs {
		protected[id] = struct{}{}
	}
	return &categoryService{
		categoryRepo:    categoryRepo,
		questionRepo:    questionRepo,
		categoryTagRepo: categoryTagRepo,
		tagRepo:         tagRepo,
		protected:       protected,
	}
}

// IsDefault 判断分类是否属于受保护的内置集合。
func (s *categoryService) IsDefault(categoryID string) bool {
	_, ok := s.protected[categoryID]
	return ok
}

// ListCategories 返回按 orderIndex、创建时间排序的全部分类，并批量附加问题数量和标签。
func (s *categoryService) ListCategories(ctx context.Context) ([]CategoryView, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return []CategoryView{}, nil
	}

	ids := make([]string, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID)
	}

	counts, err := s.questionRepo.CountByTemplateIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("统计问题数量失败: %w", err)
	}
	tagsByOwner, err := s.tagsByOwner(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]CategoryView, 0, len(categories))
	for i := range categories {
		view := s.toView(&categories[i])
		view.QuestionCount = counts[categories[i].ID]
		view.Tags = tagsByOwner[categories[i].ID]
		views = append(views, view)
	}
	return views, nil
}

// tagsByOwner 一次读取全部关联和标签，悬空的标签 ID 被直接忽略。
func (s *categoryService) tagsByOwner(ctx context.Context, ownerIDs []string) (map[string][]model.Tag, error) {
	links, err := s.categoryTagRepo.FindTagIDsByOwners(ctx, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("读取分类标签失败: %w", err)
	}

	unique := make(map[string]struct{})
	for _, tagIDs := range links {
		for _, id := range tagIDs {
			unique[id] = struct{}{}
		}
	}
	tagIDs := make([]string, 0, len(unique))
	for id := range unique {
		tagIDs = append(tagIDs, id)
	}
	tags, err := s.tagRepo.FindBatchByIDs(ctx, tagIDs)
	if err != nil {
		return nil, fmt.Errorf("读取标签失败: %w", err)
	}

	linked := make(map[string]map[string]struct{}, len(links))
	for owner, ids := range links {
		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		linked[owner] = set
	}

	// tags 已按名称排序，按此顺序分发可保证每个分类的标签也按名称排序
	result := make(map[string][]model.Tag, len(ownerIDs))
	for _, owner := range ownerIDs {
		result[owner] = []model.Tag{}
	}
	for _, tag := range tags {
		for owner, set := range linked {
			if _, ok := set[tag.ID]; ok {
				result[owner] = append(result[owner], tag)
			}
		}
	}
	return result, nil
}

// CreateCategory 用名称生成唯一 slug 并创建分类。名称本身允许重复。
func (s *categoryService) CreateCategory(ctx context.Context, name string, description *string) (*CategoryView, error) {
	if description != nil && strings.TrimSpace(*description) == "" {
		description = nil
	}
	category := &model.Category{
		ID:          uuid.NewString(),
		CategoryID:  UniqueSlug(ctx, name, s.categoryRepo.ExistsByCategoryID),
		Name:        name,
		Description: description,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	log.Infof("创建分类成功: categoryId=%s, name=%s", category.CategoryID, category.Name)

	view := s.toView(category)
	view.Tags = []model.Tag{}
	return &view, nil
}

// DeleteCategory 删除分类及其全部问题。内置分类无论是否存在都返回 ErrProtected。
func (s *categoryService) DeleteCategory(ctx context.Context, categoryID string) error {
	if s.IsDefault(categoryID) {
		return fmt.Errorf("%w: category %q is a default category", ErrProtected, categoryID)
	}

	category, err := s.categoryRepo.FindByCategoryID(ctx, categoryID)
	if err != nil {
		return notFound(err, "category %q", categoryID)
	}
	if err := s.categoryRepo.DeleteWithDependents(ctx, category.ID); err != nil {
		return notFound(err, "category %q", categoryID)
	}
	log.Infof("删除分类成功: categoryId=%s", categoryID)
	return nil
}

// ReorderCategories 逐项更新 orderIndex。每一项独立执行，全部执行完后汇总失败项；
// 若存在失败项，返回的 error 由各失败原因 errors.Join 而成。
func (s *categoryService) ReorderCategories(ctx context.Context, assignments []OrderAssignment) (*ReorderResult, error) {
	result := &ReorderResult{Applied: []string{}, Failed: []ReorderFailure{}}
	var errs []error

	for _, a := range assignments {
		if err := s.applyOrder(ctx, a); err != nil {
			result.Failed = append(result.Failed, ReorderFailure{CategoryID: a.CategoryID, Reason: err.Error()})
			errs = append(errs, err)
			continue
		}
		result.Applied = append(result.Applied, a.CategoryID)
	}

	if len(errs) > 0 {
		log.Warnf("分类排序部分失败: applied=%d, failed=%d", len(result.Applied), len(result.Failed))
		return result, errors.Join(errs...)
	}
	return result, nil
}

func (s *categoryService) applyOrder(ctx context.Context, a OrderAssignment) error {
	category, err := s.categoryRepo.FindByCategoryID(ctx, a.CategoryID)
	if err != nil {
		return notFound(err, "category %q", a.CategoryID)
	}
	return s.categoryRepo.UpdateOrderIndex(ctx, category.ID, a.OrderIndex)
}

// GetQuestions 返回分类的问题列表，按 orderIndex 升序。
func (s *categoryService) GetQuestions(ctx context.Context, categoryID string) ([]model.Question, error) {
	category, err := s.categoryRepo.FindByCategoryID(ctx, categoryID)
	if err != nil {
		return nil, notFound(err, "category %q", categoryID)
	}
	questions, err := s.questionRepo.FindByTemplateID(ctx, category.ID)
	if err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return questions, nil
}

// ReplaceQuestions 用给定列表整体替换分类的问题，orderIndex 原样保留。返回写入的问题数。
func (s *categoryService) ReplaceQuestions(ctx context.Context, categoryID string, inputs []QuestionInput) (int, error) {
	category, err := s.categoryRepo.FindByCategoryID(ctx, categoryID)
	if err != nil {
		return 0, notFound(err, "category %q", categoryID)
	}

	seen := make(map[string]struct{}, len(inputs))
	questions := make([]model.Question, 0, len(inputs))
	for _, in := range inputs {
		id := in.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, dup := seen[id]; dup {
			return 0, fmt.Errorf("%w: duplicate question id %q", ErrInvalid, id)
		}
		seen[id] = struct{}{}
		questions = append(questions, model.Question{
			ID:         id,
			TemplateID: category.ID,
			Text:       in.Text,
			OrderIndex: in.OrderIndex,
		})
	}

	if err := s.questionRepo.Replace(ctx, category.ID, questions); err != nil {
		if isDuplicate(err) {
			return 0, fmt.Errorf("%w: question id already used by another category", ErrConflict)
		}
		return 0, err
	}
	log.Infof("替换问题列表成功: categoryId=%s, count=%d", categoryID, len(questions))
	return len(questions), nil
}

// GetCategoryTags 返回分类当前关联的标签，按名称排序。
func (s *categoryService) GetCategoryTags(ctx context.Context, categoryID string) ([]model.Tag, error) {
	category, err := s.categoryRepo.FindByCategoryID(ctx, categoryID)
	if err != nil {
		return nil, notFound(err, "category %q", categoryID)
	}
	tagIDs, err := s.categoryTagRepo.FindTagIDs(ctx, category.ID)
	if err != nil {
		return nil, err
	}
	return resolveTags(ctx, s.tagRepo, tagIDs)
}

// SetCategoryTags 整体替换分类的标签关联，不校验标签是否存在，返回替换后可解析的标签。
func (s *categoryService) SetCategoryTags(ctx context.Context, categoryID string, tagIDs []string) ([]model.Tag, error) {
	category, err := s.categoryRepo.FindByCategoryID(ctx, categoryID)
	if err != nil {
		return nil, notFound(err, "category %q", categoryID)
	}
	if err := s.categoryTagRepo.Replace(ctx, category.ID, tagIDs); err != nil {
		return nil, err
	}
	log.Infof("更新分类标签: categoryId=%s, tags=%d", categoryID, len(tagIDs))
	return s.GetCategoryTags(ctx, categoryID)
}

// SeedCategories 写入尚不存在的内置分类，已存在的分类保持不变，可在每次启动时安全调用。
func (s *categoryService) SeedCategories(ctx context.Context, seeds []config.CategorySeed) error {
	for _, seed := range seeds {
		exists, err := s.categoryRepo.ExistsByCategoryID(ctx, seed.CategoryID)
		if err != nil {
			return fmt.Errorf("检查内置分类 %q 失败: %w", seed.CategoryID, err)
		}
		if exists {
			log.Debugf("内置分类已存在，跳过: %s", seed.CategoryID)
			continue
		}

		category := &model.Category{
			ID:         uuid.NewString(),
			CategoryID: seed.CategoryID,
			Name:       seed.Name,
			OrderIndex: seed.OrderIndex,
		}
		if seed.Description != "" {
			description := seed.Description
			category.Description = &description
		}
		questions := make([]model.Question, 0, len(seed.Questions))
		for i, text := range seed.Questions {
			questions = append(questions, model.Question{ID: uuid.NewString(), Text: text, OrderIndex: i})
		}
		if err := s.categoryRepo.CreateWithQuestions(ctx, category, questions); err != nil {
			return fmt.Errorf("写入内置分类 %q 失败: %w", seed.CategoryID, err)
		}
		log.Infof("内置分类初始化完成: %s (%d 个问题)", seed.CategoryID, len(questions))
	}
	return nil
}

func (s *categoryService) toView(c *model.Category) CategoryView {
	return CategoryView{
		CategoryID:  c.CategoryID,
		Name:        c.Name,
		Description: c.Description,
		OrderIndex:  c.OrderIndex,
		IsDefault:   s.IsDefault(c.CategoryID),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
