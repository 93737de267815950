package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/ragdocs-be/database"
	"github.com/tieubaoca/ragdocs-be/types"
)

type SearchHandler struct {
	vectorDB database.VectorDatabase
}

func NewSearchHandler(vectorDB database.VectorDatabase) *SearchHandler {
	return &SearchHandler{
		vectorDB: vectorDB,
	}
}

// HandleSearch runs a raw similarity search without generation, useful for
// debugging retrieval quality.
func (h *SearchHandler) HandleSearch(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid request body",
		})
		return
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "query is required",
		})
		return
	}

	results, err := h.vectorDB.Search(c.Request.Context(), req.Query, req.K, req.Filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: "Search failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   types.SearchResponse{Results: results},
	})
}
