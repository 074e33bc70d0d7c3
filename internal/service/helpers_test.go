package service

import (
	"context"
	"drafting-wizard-go/internal/config"
	"drafting-wizard-go/internal/model"
	"drafting-wizard-go/internal/repository"
	"drafting-wizard-go/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testDraftConfig = config.DraftConfig{
	DefaultTitle:    "分析結果",
	DateLayout:      "2006年01月02日",
	DateLabel:       "作成日：",
	SummaryHeading:  "まとめ",
	SummaryTemplate: "この分析では、トピックの%dつの重要な側面を網羅し、理解とさらなる探求のための構造化されたフレームワークを提供しています。",
	ArchiveEnabled:  true,
}

type testEnv struct {
	categories   repository.CategoryRepository
	questions    repository.QuestionRepository
	tags         repository.TagRepository
	categoryTags repository.AssociationRepository
	draftTags    repository.AssociationRepository
	drafts       repository.DraftRepository

	categorySvc CategoryService
	tagSvc      TagService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	env := &testEnv{
		categories:   repository.NewCategoryRepository(db),
		questions:    repository.NewQuestionRepository(db),
		tags:         repository.NewTagRepository(db),
		categoryTags: repository.NewCategoryTagRepository(db),
		draftTags:    repository.NewDraftTagRepository(db),
		drafts:       repository.NewDraftRepository(db),
	}
	env.categorySvc = NewCategoryService(env.categories, env.questions, env.categoryTags, env.tags, config.DefaultProtectedCategoryIDs)
	env.tagSvc = NewTagService(env.tags, env.drafts, env.draftTags, "#8B8680")
	return env
}

func (e *testEnv) draftService(backends DraftBackends, now time.Time) *draftService {
	svc := NewDraftService(e.categories, e.drafts, e.draftTags, e.tags, testDraftConfig, backends).(*draftService)
	svc.now = func() time.Time { return now }
	return svc
}

func (e *testEnv) seedDefaults(t *testing.T) {
	t.Helper()
	err := e.categorySvc.SeedCategories(context.Background(), []config.CategorySeed{
		{CategoryID: "academic", Name: "学術論文", OrderIndex: 0, Questions: []string{"Thesis", "Method"}},
		{CategoryID: "technical", Name: "技術書", OrderIndex: 1, Questions: []string{"Topic"}},
		{CategoryID: "custom", Name: "カスタムノート", OrderIndex: 2},
	})
	require.NoError(t, err)
}

func (e *testEnv) mustTag(t *testing.T, name string) model.Tag {
	t.Helper()
	tag, err := e.tagSvc.CreateTag(context.Background(), name, "")
	require.NoError(t, err)
	return *tag
}

func tagNames(tags []model.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}
