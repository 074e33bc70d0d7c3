package service

import (
	"context"
	"drafting-wizard-go/internal/config"
	"drafting-wizard-go/internal/model"
	"drafting-wizard-go/internal/repository"
	"drafting-wizard-go/pkg/log"
	"drafting-wizard-go/pkg/tasks"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	publishTimeout    = 5 * time.Second
	defaultSearchSize = 10
	maxSearchSize     = 50
)

// ArchivePublisher 发布 draft 归档任务。
type ArchivePublisher interface {
	PublishDraftArchive(ctx context.Context, task tasks.DraftArchiveTask) error
}

// DraftURLSigner 为已归档的 draft 生成临时下载链接。
type DraftURLSigner interface {
	PresignedURL(ctx context.Context, draftID string) (string, error)
}

// DraftSearcher 对已归档的 draft 执行全文检索。
type DraftSearcher interface {
	SearchDrafts(ctx context.Context, query string, size int) ([]model.DraftSearchHit, error)
}

// DraftBackends 是 draft 归档相关的可选后端，任意字段为 nil 时对应功能被关闭。
type DraftBackends struct {
	Publisher ArchivePublisher
	Downloads DraftURLSigner
	Search    DraftSearcher
}

// GenerateResult 是生成操作的返回值。
type GenerateResult struct {
	Markdown string `json:"markdown"`
	LogID    string `json:"logId"`
}

// DraftSummary 是历史列表中的一项。
type DraftSummary struct {
	ID          string      `json:"id"`
	CategoryID  string      `json:"categoryId"`
	Title       string      `json:"title"`
	AnswerCount int         `json:"answerCount"`
	Tags        []model.Tag `json:"tags"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// DraftDetail 是完整的生成记录及其标签。
type DraftDetail struct {
	model.GenerationLog
	Title string      `json:"title"`
	Tags  []model.Tag `json:"tags"`
}

// DraftService 接口定义了文档生成和 draft 历史相关的操作。
type DraftService interface {
	Generate(ctx context.Context, categoryID string, answers []model.AnswerItem) (*GenerateResult, error)
	ListDrafts(ctx context.Context, filter repository.DraftFilter) ([]DraftSummary, error)
	GetDraft(ctx context.Context, draftID string) (*DraftDetail, error)
	DownloadURL(ctx context.Context, draftID string) (string, error)
	SearchDrafts(ctx context.Context, query string, size int) ([]model.DraftSearchHit, error)
}

type draftService struct {
	categoryRepo repository.CategoryRepository
	draftRepo    repository.DraftRepository
	draftTagRepo repository.AssociationRepository
	tagRepo      repository.TagRepository
	cfg          config.DraftConfig
	backends     DraftBackends
	now          func() time.Time
}

// NewDraftService 创建一个新的 DraftService 实例。
func NewDraftService(
	categoryRepo repository.CategoryRepository,
	draftRepo repository.DraftRepository,
	draftTagRepo repository.AssociationRepository,
	tagRepo repository.TagRepository,
	cfg config.DraftConfig,
	backends DraftBackends,
) DraftService {
	return &draftService{
		categoryRepo: categoryRepo,
		draftRepo:    draftRepo,
		draftTagRepo: draftTagRepo,
		tagRepo:      tagRepo,
		cfg:          cfg,
		backends:     backends,
		now:          time.Now,
	}
}

// Generate 渲染 Markdown 并保存一条不可变的生成记录。
// 分类不存在时使用默认标题，不会导致请求失败。
func (s *draftService) Generate(ctx context.Context, categoryID string, answers []model.AnswerItem) (*GenerateResult, error) {
	title := s.cfg.DefaultTitle
	category, err := s.categoryRepo.FindByCategoryID(ctx, categoryID)
	switch {
	case err == nil:
		title = category.Name
	case repository.IsNotFound(err):
		log.Infof("分类 %q 不存在，使用默认标题", categoryID)
	default:
		log.Warnf("读取分类 %q 失败，使用默认标题: %v", categoryID, err)
	}

	if answers == nil {
		answers = []model.AnswerItem{}
	}
	createdAt := s.now()
	draft := &model.GenerationLog{
		ID:         uuid.NewString(),
		CategoryID: categoryID,
		Markdown:   ComposeMarkdown(s.cfg, title, createdAt, answers),
		Answers:    answers,
		CreatedAt:  createdAt,
	}
	if err := s.draftRepo.Create(ctx, draft); err != nil {
		return nil, fmt.Errorf("保存生成记录失败: %w", err)
	}
	log.Infof("生成 draft 成功: id=%s, categoryId=%s, answers=%d", draft.ID, categoryID, len(answers))

	s.publishArchive(ctx, draft)
	return &GenerateResult{Markdown: draft.Markdown, LogID: draft.ID}, nil
}

// publishArchive 尽力发布归档任务，失败只记录日志。
func (s *draftService) publishArchive(ctx context.Context, draft *model.GenerationLog) {
	if !s.cfg.ArchiveEnabled || s.backends.Publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	task := tasks.DraftArchiveTask{DraftID: draft.ID, CategoryID: draft.CategoryID}
	if err := s.backends.Publisher.PublishDraftArchive(pubCtx, task); err != nil {
		log.Errorf("发布归档任务失败: draftId=%s, err=%v", draft.ID, err)
	}
}

// ListDrafts 按创建时间倒序返回 draft 摘要，每项附带标签。
func (s *draftService) ListDrafts(ctx context.Context, filter repository.DraftFilter) ([]DraftSummary, error) {
	drafts, err := s.draftRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return []DraftSummary{}, nil
	}

	ids := make([]string, 0, len(drafts))
	for _, d := range drafts {
		ids = append(ids, d.ID)
	}
	links, err := s.draftTagRepo.FindTagIDsByOwners(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("读取 draft 标签失败: %w", err)
	}
	var allTagIDs []string
	for _, tagIDs := range links {
		allTagIDs = append(allTagIDs, tagIDs...)
	}
	tags, err := resolveTags(ctx, s.tagRepo, allTagIDs)
	if err != nil {
		return nil, err
	}

	summaries := make([]DraftSummary, 0, len(drafts))
	for _, d := range drafts {
		summaries = append(summaries, DraftSummary{
			ID:          d.ID,
			CategoryID:  d.CategoryID,
			Title:       markdownTitle(d.Markdown),
			AnswerCount: len(d.Answers),
			Tags:        pickTags(links[d.ID], tags),
			CreatedAt:   d.CreatedAt,
		})
	}
	return summaries, nil
}

// pickTags 从按名称排序的标签中挑出 tagIDs 包含的项，悬空 ID 自然被忽略。
func pickTags(tagIDs []string, sorted []model.Tag) []model.Tag {
	want := make(map[string]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		want[id] = struct{}{}
	}
	out := make([]model.Tag, 0, len(tagIDs))
	for _, t := range sorted {
		if _, ok := want[t.ID]; ok {
			out = append(out, t)
		}
	}
	return out
}

// GetDraft 返回完整的生成记录。
func (s *draftService) GetDraft(ctx context.Context, draftID string) (*DraftDetail, error) {
	draft, err := s.draftRepo.FindByID(ctx, draftID)
	if err != nil {
		return nil, notFound(err, "draft %q", draftID)
	}
	tagIDs, err := s.draftTagRepo.FindTagIDs(ctx, draftID)
	if err != nil {
		return nil, err
	}
	tags, err := resolveTags(ctx, s.tagRepo, tagIDs)
	if err != nil {
		return nil, err
	}
	return &DraftDetail{GenerationLog: *draft, Title: markdownTitle(draft.Markdown), Tags: tags}, nil
}

// DownloadURL 返回已归档 draft 的预签名下载链接。
func (s *draftService) DownloadURL(ctx context.Context, draftID string) (string, error) {
	if s.backends.Downloads == nil {
		return "", fmt.Errorf("%w: object storage is not configured", ErrUnavailable)
	}
	exists, err := s.draftRepo.Exists(ctx, draftID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("%w: draft %q", ErrNotFound, draftID)
	}
	return s.backends.Downloads.PresignedURL(ctx, draftID)
}

// SearchDrafts 在已归档的 draft 中做全文检索。size 超出范围时被修正。
func (s *draftService) SearchDrafts(ctx context.Context, query string, size int) ([]model.DraftSearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalid)
	}
	if s.backends.Search == nil {
		return nil, fmt.Errorf("%w: search is not configured", ErrUnavailable)
	}
	if size <= 0 {
		size = defaultSearchSize
	}
	if size > maxSearchSize {
		size = maxSearchSize
	}
	return s.backends.Search.SearchDrafts(ctx, query, size)
}
