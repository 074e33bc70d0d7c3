package service

import (
	"context"
	"drafting-wizard-go/pkg/log"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// FallbackSlug 在名称不含任何 ASCII 字母数字时使用。
const FallbackSlug = "category"

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify 把名称转为小写，将每段连续的非 [a-z0-9] 字符替换为单个 "-"，并去掉首尾的 "-"。
func Slugify(name string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return FallbackSlug
	}
	return slug
}

// SlugExistsFunc 报告某个 slug 当前是否已被占用。
type SlugExistsFunc func(ctx context.Context, slug string) (bool, error)

// UniqueSlug 生成一个当前未被占用的 slug。冲突时追加 "-" 和一个随机 UUID 的前 8 位十六进制字符。
// 该函数从不失败：查询出错时同样追加后缀。
func UniqueSlug(ctx context.Context, name string, exists SlugExistsFunc) string {
	base := Slugify(name)
	taken, err := exists(ctx, base)
	if err != nil {
		log.Warnf("检查 slug '%s' 是否存在失败，改用随机后缀: %v", base, err)
	}
	if err == nil && !taken {
		return base
	}
	return base + "-" + uuid.NewString()[:8]
}
