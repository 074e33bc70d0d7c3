package model

import "time"

// DraftDocument 是写入 Elasticsearch 的 draft 文档结构。
type DraftDocument struct {
	DraftID    string    `json:"draft_id"`
	CategoryID string    `json:"category_id"`
	Title      string    `json:"title"`
	Markdown   string    `json:"markdown"`
	CreatedAt  time.Time `json:"created_at"`
}

// DraftSearchHit 定义了返回给前端的搜索结果结构。
type DraftSearchHit struct {
	DraftID    string    `json:"draftId"`
	CategoryID string    `json:"categoryId"`
	Title      string    `json:"title"`
	Snippet    string    `json:"snippet"`
	Score      float64   `json:"score"`
	CreatedAt  LocalTime `json:"createdAt"`
}
