package handler

import (
	"drafting-wizard-go/internal/service"
	"drafting-wizard-go/pkg/log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CategoryHandler 负责处理模板（分类）及其问题列表的 API 请求。
type CategoryHandler struct {
	categoryService service.CategoryService
}

// NewCategoryHandler 创建一个新的 CategoryHandler 实例。
func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest 定义了创建分类的请求体结构。
type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

// UpdateQuestionsRequest 定义了整体替换问题列表的请求体结构。
type UpdateQuestionsRequest struct {
	Questions []service.QuestionInput `json:"questions" binding:"required,dive"`
}

// ReorderRequest 定义了批量调整分类顺序的请求体结构。
type ReorderRequest struct {
	Orders []service.OrderAssignment `json:"orders" binding:"required,dive"`
}

// SetTagsRequest 定义了整体替换标签关联的请求体结构。
type SetTagsRequest struct {
	TagIDs []string `json:"tagIds" binding:"required"`
}

// List 返回全部分类。
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categoryService.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, "ListCategories", err)
		return
	}
	respond(c, http.StatusOK, "success", categories)
}

// Create 创建一个新的分类。
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "CreateCategory", err)
		return
	}
	category, err := h.categoryService.CreateCategory(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		respondError(c, "CreateCategory", err)
		return
	}
	respond(c, http.StatusCreated, "分类创建成功", category)
}

// GetQuestions 返回分类的问题列表。
func (h *CategoryHandler) GetQuestions(c *gin.Context) {
	categoryID := c.Param("categoryId")
	questions, err := h.categoryService.GetQuestions(c.Request.Context(), categoryID)
	if err != nil {
		respondError(c, "GetQuestions", err)
		return
	}
	respond(c, http.StatusOK, "success", gin.H{
		"categoryId": categoryID,
		"questions":  questions,
	})
}

// UpdateQuestions 用请求中的列表整体替换分类的问题。
func (h *CategoryHandler) UpdateQuestions(c *gin.Context) {
	var req UpdateQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "UpdateQuestions", err)
		return
	}
	count, err := h.categoryService.ReplaceQuestions(c.Request.Context(), c.Param("categoryId"), req.Questions)
	if err != nil {
		respondError(c, "UpdateQuestions", err)
		return
	}
	respond(c, http.StatusOK, "问题列表已更新", gin.H{"count": count})
}

// Delete 删除分类及其全部问题。
func (h *CategoryHandler) Delete(c *gin.Context) {
	categoryID := c.Param("categoryId")
	if err := h.categoryService.DeleteCategory(c.Request.Context(), categoryID); err != nil {
		respondError(c, "DeleteCategory", err)
		return
	}
	respond(c, http.StatusOK, "分类已删除", gin.H{"categoryId": categoryID})
}

// Reorder 批量更新分类顺序。部分失败时返回 207 和逐项结果。
func (h *CategoryHandler) Reorder(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "ReorderCategories", err)
		return
	}
	result, err := h.categoryService.ReorderCategories(c.Request.Context(), req.Orders)
	if err != nil {
		if result == nil {
			respondError(c, "ReorderCategories", err)
			return
		}
		log.Warnf("ReorderCategories: partial failure: %v", err)
		respond(c, http.StatusMultiStatus, "部分分类排序失败", result)
		return
	}
	respond(c, http.StatusOK, "排序已更新", result)
}

// GetTags 返回分类关联的标签。
func (h *CategoryHandler) GetTags(c *gin.Context) {
	tags, err := h.categoryService.GetCategoryTags(c.Request.Context(), c.Param("categoryId"))
	if err != nil {
		respondError(c, "GetCategoryTags", err)
		return
	}
	respond(c, http.StatusOK, "success", tags)
}

// SetTags 整体替换分类的标签关联。
func (h *CategoryHandler) SetTags(c *gin.Context) {
	var req SetTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "SetCategoryTags", err)
		return
	}
	tags, err := h.categoryService.SetCategoryTags(c.Request.Context(), c.Param("categoryId"), req.TagIDs)
	if err != nil {
		respondError(c, "SetCategoryTags", err)
		return
	}
	respond(c, http.StatusOK, "标签已更新", tags)
}
