// Package tasks 定义了通过 Kafka 传递的任务结构。
package tasks

// DraftArchiveTask 表示一个 draft 归档任务：把生成的 Markdown 写入对象存储并建立检索索引。
type DraftArchiveTask struct {
	DraftID    string `json:"draft_id"`
	CategoryID string `json:"category_id"`
}
