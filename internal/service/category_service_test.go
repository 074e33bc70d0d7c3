package service

import (
	"context"
	"drafting-wizard-go/internal/config"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory_SlugAndCollision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.categorySvc.CreateCategory(ctx, "My Ideas!", nil)
	require.NoError(t, err)
	assert.Equal(t, "my-ideas", first.CategoryID)
	assert.Equal(t, "My Ideas!", first.Name)
	assert.False(t, first.IsDefault)
	assert.Empty(t, first.Tags)

	second, err := env.categorySvc.CreateCategory(ctx, "My Ideas!", nil)
	require.NoError(t, err)
	assert.Regexp(t, `^my-ideas-[0-9a-f]{8}$`, second.CategoryID)
	assert.Equal(t, "My Ideas!", second.Name, "names are not unique")

	fallback, err := env.categorySvc.CreateCategory(ctx, "日本語だけ", nil)
	require.NoError(t, err)
	assert.Equal(t, "category", fallback.CategoryID)
}

func TestCreateCategory_SortsAfterExisting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)

	desc := "notes"
	created, err := env.categorySvc.CreateCategory(ctx, "Notes", &desc)
	require.NoError(t, err)
	assert.Equal(t, 3, created.OrderIndex)
	require.NotNil(t, created.Description)
	assert.Equal(t, "notes", *created.Description)

	list, err := env.categorySvc.ListCategories(ctx)
	require.NoError(t, err)
	var ids []string
	for _, c := range list {
		ids = append(ids, c.CategoryID)
	}
	assert.Equal(t, []string{"academic", "technical", "custom", "notes"}, ids)
}

func TestListCategories_Decorations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)
	ai := env.mustTag(t, "AI")
	research := env.mustTag(t, "Research")

	_, err := env.categorySvc.SetCategoryTags(ctx, "academic", []string{research.ID, ai.ID, "dangling"})
	require.NoError(t, err)

	list, err := env.categorySvc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)

	academic := list[0]
	assert.Equal(t, "academic", academic.CategoryID)
	assert.True(t, academic.IsDefault)
	assert.Equal(t, int64(2), academic.QuestionCount)
	assert.Equal(t, []string{"AI", "Research"}, tagNames(academic.Tags))

	custom := list[2]
	assert.Equal(t, int64(0), custom.QuestionCount)
	assert.NotNil(t, custom.Tags)
	assert.Empty(t, custom.Tags)
}

func TestDeleteCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)

	created, err := env.categorySvc.CreateCategory(ctx, "Scratch", nil)
	require.NoError(t, err)
	_, err = env.categorySvc.ReplaceQuestions(ctx, created.CategoryID, []QuestionInput{{Text: "Why?"}})
	require.NoError(t, err)

	require.NoError(t, env.categorySvc.DeleteCategory(ctx, created.CategoryID))

	_, err = env.categorySvc.GetQuestions(ctx, created.CategoryID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = env.categorySvc.DeleteCategory(ctx, created.CategoryID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCategory_Protected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)

	for _, id := range config.DefaultProtectedCategoryIDs {
		err := env.categorySvc.DeleteCategory(ctx, id)
		assert.ErrorIs(t, err, ErrProtected, id)
	}

	questions, err := env.categorySvc.GetQuestions(ctx, "academic")
	require.NoError(t, err)
	assert.Len(t, questions, 2)

	// 受保护的 ID 即使尚未写入也不能删除
	fresh := newTestEnv(t)
	assert.ErrorIs(t, fresh.categorySvc.DeleteCategory(ctx, "custom"), ErrProtected)
}

func TestReorderCategories(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)

	result, err := env.categorySvc.ReorderCategories(ctx, []OrderAssignment{
		{CategoryID: "custom", OrderIndex: 0},
		{CategoryID: "missing", OrderIndex: 1},
		{CategoryID: "academic", OrderIndex: 20},
		{CategoryID: "technical", OrderIndex: 10},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{"custom", "academic", "technical"}, result.Applied)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "missing", result.Failed[0].CategoryID)

	list, err := env.categorySvc.ListCategories(ctx)
	require.NoError(t, err)
	var ids []string
	for _, c := range list {
		ids = append(ids, c.CategoryID)
	}
	assert.Equal(t, []string{"custom", "technical", "academic"}, ids)

	result, err = env.categorySvc.ReorderCategories(ctx, []OrderAssignment{{CategoryID: "academic", OrderIndex: -5}})
	require.NoError(t, err)
	assert.Equal(t, []string{"academic"}, result.Applied)
	assert.Empty(t, result.Failed)
}

func TestReplaceQuestions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)

	n, err := env.categorySvc.ReplaceQuestions(ctx, "custom", []QuestionInput{
		{ID: "keep", Text: "Second", OrderIndex: 7},
		{Text: "First", OrderIndex: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	questions, err := env.categorySvc.GetQuestions(ctx, "custom")
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "First", questions[0].Text)
	assert.NotEmpty(t, questions[0].ID)
	assert.Equal(t, 3, questions[0].OrderIndex)
	assert.Equal(t, "keep", questions[1].ID)
	assert.Equal(t, 7, questions[1].OrderIndex, "orderIndex is preserved verbatim")

	n, err = env.categorySvc.ReplaceQuestions(ctx, "custom", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	questions, err = env.categorySvc.GetQuestions(ctx, "custom")
	require.NoError(t, err)
	assert.Empty(t, questions)
}

func TestReplaceQuestions_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)

	_, err := env.categorySvc.ReplaceQuestions(ctx, "missing", []QuestionInput{{Text: "x"}})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.categorySvc.ReplaceQuestions(ctx, "custom", []QuestionInput{{ID: "a", Text: "x"}, {ID: "a", Text: "y"}})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = env.categorySvc.ReplaceQuestions(ctx, "custom", []QuestionInput{{ID: "shared", Text: "x"}})
	require.NoError(t, err)
	_, err = env.categorySvc.ReplaceQuestions(ctx, "technical", []QuestionInput{{ID: "shared", Text: "y"}})
	assert.ErrorIs(t, err, ErrConflict)

	// 失败的替换不会留下部分结果
	questions, err := env.categorySvc.GetQuestions(ctx, "technical")
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Topic", questions[0].Text)
}

func TestCategoryTags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)
	ai := env.mustTag(t, "AI")

	_, err := env.categorySvc.GetCategoryTags(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.categorySvc.SetCategoryTags(ctx, "missing", []string{ai.ID})
	assert.ErrorIs(t, err, ErrNotFound)

	tags, err := env.categorySvc.SetCategoryTags(ctx, "technical", []string{ai.ID, ai.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"AI"}, tagNames(tags))

	tags, err = env.categorySvc.SetCategoryTags(ctx, "technical", []string{})
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestSeedCategoriesIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)

	_, err := env.categorySvc.ReplaceQuestions(ctx, "academic", []QuestionInput{{Text: "Edited"}})
	require.NoError(t, err)

	env.seedDefaults(t)

	list, err := env.categorySvc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	questions, err := env.categorySvc.GetQuestions(ctx, "academic")
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Edited", questions[0].Text)
}

func TestReorderErrorJoinsEveryFailure(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.categorySvc.ReorderCategories(context.Background(), []OrderAssignment{
		{CategoryID: "a"}, {CategoryID: "b"},
	})
	require.Error(t, err)

	var joined interface{ Unwrap() []error }
	require.True(t, errors.As(err, &joined))
	assert.Len(t, joined.Unwrap(), 2)
}
