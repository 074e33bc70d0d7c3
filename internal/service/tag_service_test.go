package service

import (
	"context"
	"drafting-wizard-go/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTag(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	research, err := env.tagSvc.CreateTag(ctx, "Research", "")
	require.NoError(t, err)
	assert.NotEmpty(t, research.ID)
	assert.Equal(t, "#8B8680", research.Color)

	_, err = env.tagSvc.CreateTag(ctx, "Research", "#ff0000")
	assert.ErrorIs(t, err, ErrConflict)

	ideas, err := env.tagSvc.CreateTag(ctx, "Ideas", "#ff0000")
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", ideas.Color)

	_, err = env.tagSvc.CreateTag(ctx, "   ", "")
	assert.ErrorIs(t, err, ErrInvalid)

	tags, err := env.tagSvc.ListTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ideas", "Research"}, tagNames(tags))
}

func TestCreateTag_NamesDifferingInCaseAreDistinct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	upper, err := env.tagSvc.CreateTag(ctx, "Research", "")
	require.NoError(t, err)
	lower, err := env.tagSvc.CreateTag(ctx, "research", "")
	require.NoError(t, err)
	assert.NotEqual(t, upper.ID, lower.ID)

	_, err = env.tagSvc.CreateTag(ctx, "research", "")
	assert.ErrorIs(t, err, ErrConflict)

	tags, err := env.tagSvc.ListTags(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Research", "research"}, tagNames(tags))
}

func TestListTagsEmpty(t *testing.T) {
	env := newTestEnv(t)

	tags, err := env.tagSvc.ListTags(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tags)
	assert.Empty(t, tags)
}

func TestDraftTags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.drafts.Create(ctx, &model.GenerationLog{ID: "d1", CategoryID: "academic", Markdown: "# x"}))
	ai := env.mustTag(t, "AI")
	research := env.mustTag(t, "Research")

	tags, err := env.tagSvc.SetDraftTags(ctx, "d1", []string{research.ID, ai.ID, "dangling"})
	require.NoError(t, err)
	assert.Equal(t, []string{"AI", "Research"}, tagNames(tags), "dangling ids are omitted on read")

	// 与输入顺序和重复无关
	again, err := env.tagSvc.SetDraftTags(ctx, "d1", []string{ai.ID, research.ID, ai.ID, "dangling"})
	require.NoError(t, err)
	assert.Equal(t, tags, again)

	got, err := env.tagSvc.GetDraftTags(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, tags, got)

	cleared, err := env.tagSvc.SetDraftTags(ctx, "d1", []string{})
	require.NoError(t, err)
	assert.Empty(t, cleared)
	got, err = env.tagSvc.GetDraftTags(ctx, "d1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDraftTagsMissingDraft(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.tagSvc.SetDraftTags(ctx, "nope", []string{"t1"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.tagSvc.GetDraftTags(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	ids, err := env.draftTags.FindTagIDs(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, ids, "no links are written for an unknown draft")
}
