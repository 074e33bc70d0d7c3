package service

import (
	"context"
	"drafting-wizard-go/internal/model"
	"drafting-wizard-go/internal/repository"
	"drafting-wizard-go/pkg/log"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// TagService 接口定义了标签注册表以及 draft 标签关联的操作。
type TagService interface {
	ListTags(ctx context.Context) ([]model.Tag, error)
	CreateTag(ctx context.Context, name, color string) (*model.Tag, error)
	GetDraftTags(ctx context.Context, draftID string) ([]model.Tag, error)
	SetDraftTags(ctx context.Context, draftID string, tagIDs []string) ([]model.Tag, error)
}

type tagService struct {
	tagRepo      repository.TagRepository
	draftRepo    repository.DraftRepository
	draftTagRepo repository.AssociationRepository
	defaultColor string
}

// NewTagService 创建一个新的 TagService 实例。
func NewTagService(
	tagRepo repository.TagRepository,
	draftRepo repository.DraftRepository,
	draftTagRepo repository.AssociationRepository,
	defaultColor string,
) TagService {
	return &tagService{
		tagRepo:      tagRepo,
		draftRepo:    draftRepo,
		draftTagRepo: draftTagRepo,
		defaultColor: defaultColor,
	}
}

// ListTags 按名称升序返回全部标签。
func (s *tagService) ListTags(ctx context.Context) ([]model.Tag, error) {
	tags, err := s.tagRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []model.Tag{}
	}
	return tags, nil
}

// CreateTag 创建标签。名称必须唯一，color 为空时使用默认颜色。
func (s *tagService) CreateTag(ctx context.Context, name, color string) (*model.Tag, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: tag name is required", ErrInvalid)
	}

	_, err := s.tagRepo.FindByName(ctx, name)
	if err == nil {
		return nil, fmt.Errorf("%w: tag %q", ErrConflict, name)
	}
	if !repository.IsNotFound(err) {
		return nil, err
	}

	if color == "" {
		color = s.defaultColor
	}
	tag := &model.Tag{ID: uuid.NewString(), Name: name, Color: color}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		// 并发创建同名标签时由唯一索引兜底
		if isDuplicate(err) {
			return nil, fmt.Errorf("%w: tag %q", ErrConflict, name)
		}
		return nil, err
	}
	log.Infof("创建标签成功: id=%s, name=%s", tag.ID, tag.Name)
	return tag, nil
}

// GetDraftTags 返回 draft 关联的标签，draft 不存在时返回 ErrNotFound。
func (s *tagService) GetDraftTags(ctx context.Context, draftID string) ([]model.Tag, error) {
	if err := s.requireDraft(ctx, draftID); err != nil {
		return nil, err
	}
	tagIDs, err := s.draftTagRepo.FindTagIDs(ctx, draftID)
	if err != nil {
		return nil, err
	}
	return resolveTags(ctx, s.tagRepo, tagIDs)
}

// SetDraftTags 整体替换 draft 的标签关联。
func (s *tagService) SetDraftTags(ctx context.Context, draftID string, tagIDs []string) ([]model.Tag, error) {
	if err := s.requireDraft(ctx, draftID); err != nil {
		return nil, err
	}
	if err := s.draftTagRepo.Replace(ctx, draftID, tagIDs); err != nil {
		return nil, err
	}
	log.Infof("更新 draft 标签: draftId=%s, tags=%d", draftID, len(tagIDs))

	current, err := s.draftTagRepo.FindTagIDs(ctx, draftID)
	if err != nil {
		return nil, err
	}
	return resolveTags(ctx, s.tagRepo, current)
}

func (s *tagService) requireDraft(ctx context.Context, draftID string) error {
	exists, err := s.draftRepo.Exists(ctx, draftID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: draft %q", ErrNotFound, draftID)
	}
	return nil
}

// resolveTags 把标签 ID 解析为标签对象，悬空的 ID 直接省略。
func resolveTags(ctx context.Context, tagRepo repository.TagRepository, tagIDs []string) ([]model.Tag, error) {
	if len(tagIDs) == 0 {
		return []model.Tag{}, nil
	}
	tags, err := tagRepo.FindBatchByIDs(ctx, tagIDs)
	if err != nil {
		return nil, fmt.Errorf("读取标签失败: %w", err)
	}
	if tags == nil {
		tags = []model.Tag{}
	}
	return tags, nil
}
