// Package pipeline 定义了 draft 归档的核心流程。
package pipeline

import (
	"context"
	"drafting-wizard-go/internal/model"
	"drafting-wizard-go/internal/repository"
	"drafting-wizard-go/pkg/log"
	"drafting-wizard-go/pkg/tasks"
	"fmt"
)

// ObjectStore 保存 draft 的 Markdown 原文。
type ObjectStore interface {
	PutMarkdown(ctx context.Context, draftID, markdown string) error
}

// Indexer 把 draft 写入检索索引。
type Indexer interface {
	IndexDraft(ctx context.Context, doc model.DraftDocument) error
}

// Processor 封装了归档处理的所有依赖和逻辑。
type Processor struct {
	draftRepo    repository.DraftRepository
	categoryRepo repository.CategoryRepository
	store        ObjectStore
	indexer      Indexer
	defaultTitle string
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(
	draftRepo repository.DraftRepository,
	categoryRepo repository.CategoryRepository,
	store ObjectStore,
	indexer Indexer,
	defaultTitle string,
) *Processor {
	return &Processor{
		draftRepo:    draftRepo,
		categoryRepo: categoryRepo,
		store:        store,
		indexer:      indexer,
		defaultTitle: defaultTitle,
	}
}

// Process 是归档处理的主函数。两个步骤都是幂等的，失败后重新投递可以安全地整体重跑。
func (p *Processor) Process(ctx context.Context, task tasks.DraftArchiveTask) error {
	log.Infof("[Processor] 开始归档 draft, draftId: %s, categoryId: %s", task.DraftID, task.CategoryID)

	// 1. 读取生成记录
	draft, err := p.draftRepo.FindByID(ctx, task.DraftID)
	if err != nil {
		if repository.IsNotFound(err) {
			// 记录不存在时重试没有意义
			log.Warnf("[Processor] draft 不存在, 跳过归档: %s", task.DraftID)
			return nil
		}
		return fmt.Errorf("读取 draft 失败: %w", err)
	}

	// 2. 写入对象存储
	if err := p.store.PutMarkdown(ctx, draft.ID, draft.Markdown); err != nil {
		log.Errorf("[Processor] 上传 Markdown 失败, draftId: %s, Error: %v", draft.ID, err)
		return err
	}
	log.Infof("[Processor] 步骤2: Markdown 已写入对象存储, 大小: %d 字节", len(draft.Markdown))

	// 3. 建立检索索引
	doc := model.DraftDocument{
		DraftID:    draft.ID,
		CategoryID: draft.CategoryID,
		Title:      p.title(ctx, draft.CategoryID),
		Markdown:   draft.Markdown,
		CreatedAt:  draft.CreatedAt,
	}
	if err := p.indexer.IndexDraft(ctx, doc); err != nil {
		log.Errorf("[Processor] 索引 draft 失败, draftId: %s, Error: %v", draft.ID, err)
		return fmt.Errorf("索引 draft 失败: %w", err)
	}

	log.Infof("[Processor] draft 归档完成: %s", draft.ID)
	return nil
}

// title 使用分类当前名称，分类已删除时回退到默认标题。
func (p *Processor) title(ctx context.Context, categoryID string) string {
	category, err := p.categoryRepo.FindByCategoryID(ctx, categoryID)
	if err != nil {
		if !repository.IsNotFound(err) {
			log.Warnf("[Processor] 读取分类失败, 使用默认标题: %v", err)
		}
		return p.defaultTitle
	}
	return category.Name
}
