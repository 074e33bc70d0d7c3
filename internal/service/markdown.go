package service

import (
	"drafting-wizard-go/internal/config"
	"drafting-wizard-go/internal/model"
	"fmt"
	"strings"
	"time"
)

// ComposeMarkdown 按固定结构生成文档：标题、生成日期、每个回答一节，最后是总结。
// 回答按传入顺序渲染，不与分类当前的问题列表做任何校验。
func ComposeMarkdown(cfg config.DraftConfig, title string, createdAt time.Time, answers []model.AnswerItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "*%s%s*\n\n---\n\n", cfg.DateLabel, createdAt.Format(cfg.DateLayout))

	for _, item := range answers {
		fmt.Fprintf(&b, "## %s\n\n", item.Text)
		fmt.Fprintf(&b, "%s\n\n", item.Answer)
	}

	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "## %s\n\n", cfg.SummaryHeading)
	fmt.Fprintf(&b, cfg.SummaryTemplate+"\n", len(answers))
	return b.String()
}

// markdownTitle 取出文档第一行的一级标题。
func markdownTitle(markdown string) string {
	line, _, _ := strings.Cut(markdown, "\n")
	if title, ok := strings.CutPrefix(line, "# "); ok {
		return title
	}
	return ""
}
