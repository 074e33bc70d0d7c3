package service

import (
	"context"
	"drafting-wizard-go/internal/model"
	"drafting-wizard-go/internal/repository"
	"drafting-wizard-go/pkg/tasks"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local)

type recordingPublisher struct {
	tasks []tasks.DraftArchiveTask
	err   error
}

func (p *recordingPublisher) PublishDraftArchive(_ context.Context, task tasks.DraftArchiveTask) error {
	p.tasks = append(p.tasks, task)
	return p.err
}

type staticSigner struct{}

func (staticSigner) PresignedURL(_ context.Context, draftID string) (string, error) {
	return "https://minio.local/drafts/" + draftID + ".md?sig", nil
}

type stubSearcher struct {
	query string
	size  int
}

func (s *stubSearcher) SearchDrafts(_ context.Context, query string, size int) ([]model.DraftSearchHit, error) {
	s.query, s.size = query, size
	return []model.DraftSearchHit{{DraftID: "d1"}}, nil
}

func TestComposeMarkdown(t *testing.T) {
	md := ComposeMarkdown(testDraftConfig, "学術論文", fixedNow, []model.AnswerItem{
		{QuestionID: "q1", Text: "Thesis", Answer: "AI safety"},
	})

	want := "# 学術論文\n\n" +
		"*作成日：2024年05月01日*\n\n---\n\n" +
		"## Thesis\n\nAI safety\n\n" +
		"---\n\n## まとめ\n\n" +
		"この分析では、トピックの1つの重要な側面を網羅し、理解とさらなる探求のための構造化されたフレームワークを提供しています。\n"
	assert.Equal(t, want, md)
}

func TestComposeMarkdownWithoutAnswers(t *testing.T) {
	md := ComposeMarkdown(testDraftConfig, "分析結果", fixedNow, nil)

	assert.True(t, strings.HasPrefix(md, "# 分析結果\n\n"))
	assert.NotContains(t, md, "\n## \n")
	assert.Contains(t, md, "トピックの0つの")
}

func TestMarkdownTitle(t *testing.T) {
	assert.Equal(t, "学術論文", markdownTitle("# 学術論文\n\nbody"))
	assert.Equal(t, "only", markdownTitle("# only"))
	assert.Equal(t, "", markdownTitle("## not a title"))
}

func TestGenerate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)
	publisher := &recordingPublisher{}
	svc := env.draftService(DraftBackends{Publisher: publisher}, fixedNow)

	answers := []model.AnswerItem{{QuestionID: "q1", Text: "Thesis", Answer: "AI safety"}}
	result, err := svc.Generate(ctx, "academic", answers)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Markdown, "# 学術論文\n\n*作成日：2024年05月01日*"))
	assert.Contains(t, result.Markdown, "## Thesis\n\nAI safety")
	assert.Contains(t, result.Markdown, "トピックの1つの")
	assert.NotEmpty(t, result.LogID)

	stored, err := env.drafts.FindByID(ctx, result.LogID)
	require.NoError(t, err)
	assert.Equal(t, "academic", stored.CategoryID)
	assert.Equal(t, result.Markdown, stored.Markdown)
	assert.Equal(t, answers, []model.AnswerItem(stored.Answers))

	require.Len(t, publisher.tasks, 1)
	assert.Equal(t, tasks.DraftArchiveTask{DraftID: result.LogID, CategoryID: "academic"}, publisher.tasks[0])
}

func TestGenerateUnknownCategoryUsesDefaultTitle(t *testing.T) {
	env := newTestEnv(t)
	svc := env.draftService(DraftBackends{}, fixedNow)

	answers := []model.AnswerItem{
		{QuestionID: "x", Text: "B", Answer: "2"},
		{QuestionID: "y", Text: "A", Answer: "1"},
	}
	result, err := svc.Generate(context.Background(), "ghost", answers)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Markdown, "# 分析結果\n\n"))
	assert.Less(t, strings.Index(result.Markdown, "## B"), strings.Index(result.Markdown, "## A"), "answers render in input order")
	assert.Contains(t, result.Markdown, "トピックの2つの")
}

func TestGeneratePublishFailureDoesNotFailRequest(t *testing.T) {
	env := newTestEnv(t)
	publisher := &recordingPublisher{err: errors.New("broker down")}
	svc := env.draftService(DraftBackends{Publisher: publisher}, fixedNow)

	result, err := svc.Generate(context.Background(), "academic", nil)
	require.NoError(t, err)
	assert.Len(t, publisher.tasks, 1)

	exists, err := env.drafts.Exists(context.Background(), result.LogID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGenerateSkipsPublishWhenArchiveDisabled(t *testing.T) {
	env := newTestEnv(t)
	publisher := &recordingPublisher{}
	svc := env.draftService(DraftBackends{Publisher: publisher}, fixedNow)
	svc.cfg.ArchiveEnabled = false

	_, err := svc.Generate(context.Background(), "academic", nil)
	require.NoError(t, err)
	assert.Empty(t, publisher.tasks)
}

func TestListAndGetDrafts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)
	research := env.mustTag(t, "Research")

	svc := env.draftService(DraftBackends{}, fixedNow)
	first, err := svc.Generate(ctx, "academic", []model.AnswerItem{{QuestionID: "q1", Text: "Thesis", Answer: "AI safety"}})
	require.NoError(t, err)
	svc.now = func() time.Time { return fixedNow.Add(time.Minute) }
	second, err := svc.Generate(ctx, "technical", nil)
	require.NoError(t, err)

	_, err = env.tagSvc.SetDraftTags(ctx, first.LogID, []string{research.ID, "dangling"})
	require.NoError(t, err)

	all, err := svc.ListDrafts(ctx, repository.DraftFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.LogID, all[0].ID, "newest first")
	assert.Equal(t, "技術書", all[0].Title)
	assert.Empty(t, all[0].Tags)
	assert.Equal(t, 1, all[1].AnswerCount)
	assert.Equal(t, []string{"Research"}, tagNames(all[1].Tags))

	tagged, err := svc.ListDrafts(ctx, repository.DraftFilter{TagID: research.ID})
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, first.LogID, tagged[0].ID)

	none, err := svc.ListDrafts(ctx, repository.DraftFilter{CategoryID: "custom"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	detail, err := svc.GetDraft(ctx, first.LogID)
	require.NoError(t, err)
	assert.Equal(t, "学術論文", detail.Title)
	assert.Equal(t, first.Markdown, detail.Markdown)
	assert.Equal(t, []string{"Research"}, tagNames(detail.Tags))

	_, err = svc.GetDraft(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDraftsSurviveCategoryDeletion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created, err := env.categorySvc.CreateCategory(ctx, "Temp", nil)
	require.NoError(t, err)

	svc := env.draftService(DraftBackends{}, fixedNow)
	result, err := svc.Generate(ctx, created.CategoryID, nil)
	require.NoError(t, err)
	tag := env.mustTag(t, "Keep")
	_, err = env.tagSvc.SetDraftTags(ctx, result.LogID, []string{tag.ID})
	require.NoError(t, err)

	require.NoError(t, env.categorySvc.DeleteCategory(ctx, created.CategoryID))

	detail, err := svc.GetDraft(ctx, result.LogID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Keep"}, tagNames(detail.Tags))
}

func TestDownloadURL(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.drafts.Create(ctx, &model.GenerationLog{ID: "d1", CategoryID: "academic", Markdown: "# x"}))

	svc := env.draftService(DraftBackends{Downloads: staticSigner{}}, fixedNow)
	url, err := svc.DownloadURL(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "https://minio.local/drafts/d1.md?sig", url)

	_, err = svc.DownloadURL(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	disabled := env.draftService(DraftBackends{}, fixedNow)
	_, err = disabled.DownloadURL(ctx, "d1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSearchDrafts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	searcher := &stubSearcher{}
	svc := env.draftService(DraftBackends{Search: searcher}, fixedNow)

	_, err := svc.SearchDrafts(ctx, "  ", 5)
	assert.ErrorIs(t, err, ErrInvalid)

	hits, err := svc.SearchDrafts(ctx, " AI safety ", 0)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
	assert.Equal(t, "AI safety", searcher.query)
	assert.Equal(t, defaultSearchSize, searcher.size)

	_, err = svc.SearchDrafts(ctx, "AI", 1000)
	require.NoError(t, err)
	assert.Equal(t, maxSearchSize, searcher.size)

	disabled := env.draftService(DraftBackends{}, fixedNow)
	_, err = disabled.SearchDrafts(ctx, "AI", 5)
	assert.ErrorIs(t, err, ErrUnavailable)
}
