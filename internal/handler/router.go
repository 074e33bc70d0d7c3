package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes 把所有 API 路由挂载到 /api 下，并注册 / 和 /health。
func RegisterRoutes(r *gin.Engine, categories *CategoryHandler, tags *TagHandler, drafts *DraftHandler) {
	r.GET("/", func(c *gin.Context) {
		respond(c, http.StatusOK, "Drafting Wizard API", nil)
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		templates := api.Group("/templates")
		{
			templates.GET("", categories.List)
			templates.POST("", categories.Create)
			templates.GET("/:categoryId", categories.GetQuestions)
			templates.PUT("/:categoryId", categories.UpdateQuestions)
			templates.DELETE("/:categoryId", categories.Delete)
			templates.GET("/:categoryId/tags", categories.GetTags)
			templates.PUT("/:categoryId/tags", categories.SetTags)
		}
		api.PUT("/template-order", categories.Reorder)

		api.GET("/tags", tags.List)
		api.POST("/tags", tags.Create)

		api.POST("/generate", drafts.Generate)
		draftGroup := api.Group("/drafts")
		{
			draftGroup.GET("", drafts.List)
			draftGroup.GET("/:draftId", drafts.Get)
			draftGroup.GET("/:draftId/tags", drafts.GetTags)
			draftGroup.PUT("/:draftId/tags", drafts.SetTags)
			draftGroup.GET("/:draftId/download", drafts.Download)
		}
		api.GET("/search/drafts", drafts.Search)
	}
}
