package handler

import (
	"drafting-wizard-go/internal/model"
	"drafting-wizard-go/internal/repository"
	"drafting-wizard-go/internal/service"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultDraftLimit = 50
	maxDraftLimit     = 200
)

// DraftHandler 负责文档生成和 draft 历史相关的 API 请求。
type DraftHandler struct {
	draftService service.DraftService
	tagService   service.TagService
}

// NewDraftHandler 创建一个新的 DraftHandler 实例。
func NewDraftHandler(draftService service.DraftService, tagService service.TagService) *DraftHandler {
	return &DraftHandler{draftService: draftService, tagService: tagService}
}

// AnswerRequest 是一个问题的回答。
type AnswerRequest struct {
	QuestionID string `json:"questionId"`
	Text       string `json:"text"`
	Answer     string `json:"answer"`
}

// GenerateRequest 定义了生成文档的请求体结构。
type GenerateRequest struct {
	CategoryID string          `json:"categoryId" binding:"required"`
	Answers    []AnswerRequest `json:"answers" binding:"required,dive"`
}

// Generate 根据回答生成 Markdown 并保存生成记录。
func (h *DraftHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Generate", err)
		return
	}

	answers := make([]model.AnswerItem, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, model.AnswerItem{QuestionID: a.QuestionID, Text: a.Text, Answer: a.Answer})
	}
	result, err := h.draftService.Generate(c.Request.Context(), req.CategoryID, answers)
	if err != nil {
		respondError(c, "Generate", err)
		return
	}
	respond(c, http.StatusOK, "success", result)
}

// List 返回 draft 历史，支持 category_id、tag_id、limit 查询参数。
func (h *DraftHandler) List(c *gin.Context) {
	limit := defaultDraftLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respond(c, http.StatusBadRequest, "limit 必须是正整数", nil)
			return
		}
		limit = min(n, maxDraftLimit)
	}

	drafts, err := h.draftService.ListDrafts(c.Request.Context(), repository.DraftFilter{
		CategoryID: c.Query("category_id"),
		TagID:      c.Query("tag_id"),
		Limit:      limit,
	})
	if err != nil {
		respondError(c, "ListDrafts", err)
		return
	}
	respond(c, http.StatusOK, "success", drafts)
}

// Get 返回完整的 draft。
func (h *DraftHandler) Get(c *gin.Context) {
	draft, err := h.draftService.GetDraft(c.Request.Context(), c.Param("draftId"))
	if err != nil {
		respondError(c, "GetDraft", err)
		return
	}
	respond(c, http.StatusOK, "success", draft)
}

// GetTags 返回 draft 关联的标签。
func (h *DraftHandler) GetTags(c *gin.Context) {
	tags, err := h.tagService.GetDraftTags(c.Request.Context(), c.Param("draftId"))
	if err != nil {
		respondError(c, "GetDraftTags", err)
		return
	}
	respond(c, http.StatusOK, "success", tags)
}

// SetTags 整体替换 draft 的标签关联。
func (h *DraftHandler) SetTags(c *gin.Context) {
	var req SetTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "SetDraftTags", err)
		return
	}
	tags, err := h.tagService.SetDraftTags(c.Request.Context(), c.Param("draftId"), req.TagIDs)
	if err != nil {
		respondError(c, "SetDraftTags", err)
		return
	}
	respond(c, http.StatusOK, "标签已更新", tags)
}

// Download 返回归档 Markdown 的临时下载链接。
func (h *DraftHandler) Download(c *gin.Context) {
	url, err := h.draftService.DownloadURL(c.Request.Context(), c.Param("draftId"))
	if err != nil {
		respondError(c, "DownloadDraft", err)
		return
	}
	respond(c, http.StatusOK, "success", gin.H{"url": url})
}

// Search 在已归档的 draft 中做全文检索，参数 q 必填，size 可选。
func (h *DraftHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	hits, err := h.draftService.SearchDrafts(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		respondError(c, "SearchDrafts", err)
		return
	}
	respond(c, http.StatusOK, "success", hits)
}
