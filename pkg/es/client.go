// Package es 提供了与 Elasticsearch 交互的客户端功能。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"drafting-wizard-go/internal/config"
	"drafting-wizard-go/internal/model"
	"drafting-wizard-go/pkg/log"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const snippetLength = 150

// draftIndexMapping 使用内置的 cjk 分析器，日文和中文内容无需额外插件即可检索。
const draftIndexMapping = `{
	"mappings": {
		"properties": {
			"draft_id": { "type": "keyword" },
			"category_id": { "type": "keyword" },
			"title": { "type": "text", "analyzer": "cjk" },
			"markdown": { "type": "text", "analyzer": "cjk" },
			"created_at": { "type": "date" }
		}
	}
}`

// DraftIndex 封装了 draft 索引的读写。
type DraftIndex struct {
	client    *elasticsearch.Client
	indexName string
}

// NewClient 根据配置创建 Elasticsearch 客户端，Addresses 支持逗号分隔的多个地址。
func NewClient(esCfg config.ElasticsearchConfig) (*elasticsearch.Client, error) {
	cfg := elasticsearch.Config{
		Addresses: splitAddresses(esCfg.Addresses),
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	return elasticsearch.NewClient(cfg)
}

// NewDraftIndex 创建一个 DraftIndex 实例。
func NewDraftIndex(client *elasticsearch.Client, indexName string) *DraftIndex {
	return &DraftIndex{client: client, indexName: indexName}
}

// EnsureIndex 检查索引是否存在，如果不存在则创建它
func (d *DraftIndex) EnsureIndex(ctx context.Context) error {
	res, err := d.client.Indices.Exists([]string{d.indexName}, d.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return err
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", d.indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("检查索引 '%s' 是否存在时收到意外的状态码: %d", d.indexName, res.StatusCode)
	}

	res, err = d.client.Indices.Create(
		d.indexName,
		d.client.Indices.Create.WithContext(ctx),
		d.client.Indices.Create.WithBody(strings.NewReader(draftIndexMapping)),
	)
	if err != nil {
		log.Errorf("创建索引 '%s' 失败: %v", d.indexName, err)
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", d.indexName, res.String())
		return errors.New("创建索引时 Elasticsearch 返回错误")
	}

	log.Infof("索引 '%s' 创建成功", d.indexName)
	return nil
}

// IndexDraft 以 draft ID 作为文档 ID 写入索引，重复写入会覆盖旧文档。
func (d *DraftIndex) IndexDraft(ctx context.Context, doc model.DraftDocument) error {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      d.indexName,
		DocumentID: doc.DraftID,
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, d.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("索引 draft 到 Elasticsearch 出错: %s", res.String())
		return fmt.Errorf("failed to index draft %s: %s", doc.DraftID, res.Status())
	}
	return nil
}

// SearchDrafts 对标题和正文执行 multi_match 查询，按相关度返回最多 size 条结果。
func (d *DraftIndex) SearchDrafts(ctx context.Context, query string, size int) ([]model.DraftSearchHit, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(buildSearchQuery(query, size)); err != nil {
		return nil, fmt.Errorf("序列化查询失败: %w", err)
	}

	res, err := d.client.Search(
		d.client.Search.WithContext(ctx),
		d.client.Search.WithIndex(d.indexName),
		d.client.Search.WithBody(&buf),
	)
	if err != nil {
		log.Errorf("向 Elasticsearch 发送搜索请求失败: %v", err)
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		log.Errorf("Elasticsearch 返回错误, status: %s, body: %s", res.Status(), string(body))
		return nil, fmt.Errorf("elasticsearch search failed: %s", res.Status())
	}
	return parseSearchResponse(res.Body)
}

func buildSearchQuery(query string, size int) map[string]interface{} {
	return map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^2", "markdown"},
			},
		},
		"highlight": map[string]interface{}{
			"fields": map[string]interface{}{
				"markdown": map[string]interface{}{
					"fragment_size":       snippetLength,
					"number_of_fragments": 1,
				},
			},
		},
	}
}

func parseSearchResponse(body io.Reader) ([]model.DraftSearchHit, error) {
	var esResponse struct {
		Hits struct {
			Hits []struct {
				Score     float64             `json:"_score"`
				Source    model.DraftDocument `json:"_source"`
				Highlight map[string][]string `json:"highlight"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("解析 Elasticsearch 响应失败: %w", err)
	}

	hits := make([]model.DraftSearchHit, 0, len(esResponse.Hits.Hits))
	for _, h := range esResponse.Hits.Hits {
		snippet := truncate(h.Source.Markdown, snippetLength)
		if fragments := h.Highlight["markdown"]; len(fragments) > 0 {
			snippet = fragments[0]
		}
		hits = append(hits, model.DraftSearchHit{
			DraftID:    h.Source.DraftID,
			CategoryID: h.Source.CategoryID,
			Title:      h.Source.Title,
			Snippet:    snippet,
			Score:      h.Score,
			CreatedAt:  model.LocalTime(h.Source.CreatedAt),
		})
	}
	return hits, nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func splitAddresses(addresses string) []string {
	var out []string
	for _, a := range strings.Split(addresses, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
