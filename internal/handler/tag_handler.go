package handler

import (
	"drafting-wizard-go/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// TagHandler 负责处理标签注册表的 API 请求。
type TagHandler struct {
	tagService service.TagService
}

// NewTagHandler 创建一个新的 TagHandler 实例。
func NewTagHandler(tagService service.TagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

// CreateTagRequest 定义了创建标签的请求体结构。
type CreateTagRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

// List 按名称返回全部标签。
func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.tagService.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, "ListTags", err)
		return
	}
	respond(c, http.StatusOK, "success", tags)
}

// Create 创建标签，名称重复时返回 409。
func (h *TagHandler) Create(c *gin.Context) {
	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "CreateTag", err)
		return
	}
	tag, err := h.tagService.CreateTag(c.Request.Context(), req.Name, req.Color)
	if err != nil {
		respondError(c, "CreateTag", err)
		return
	}
	respond(c, http.StatusCreated, "标签创建成功", tag)
}
