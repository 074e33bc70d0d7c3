package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalTimeMarshalJSON(t *testing.T) {
	hit := DraftSearchHit{
		DraftID:   "d1",
		CreatedAt: LocalTime(time.Date(2024, 5, 1, 9, 30, 5, 123, time.UTC)),
	}
	b, err := json.Marshal(hit)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"createdAt":"2024-05-01 09:30:05"`)
}

func TestCategoryHidesStorageID(t *testing.T) {
	b, err := json.Marshal(Category{ID: "storage-1", CategoryID: "academic", Name: "学術論文"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "storage-1")
	assert.Contains(t, string(b), `"categoryId":"academic"`)
}

func TestAllModelsCoversEveryTable(t *testing.T) {
	tables := map[string]bool{}
	for _, m := range AllModels() {
		if tn, ok := m.(interface{ TableName() string }); ok {
			tables[tn.TableName()] = true
		}
	}
	for _, want := range []string{"templates", "questions", "tags", "category_tags", "draft_tags", "generation_logs"} {
		assert.True(t, tables[want], want)
	}
}
