package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/ragdocs-be/repository"
	services "github.com/tieubaoca/ragdocs-be/service"
	"github.com/tieubaoca/ragdocs-be/types"
)

const chatHistoryWindow = 5

type QueryHandler struct {
	query    *services.QueryService
	sessions repository.SessionRepo
}

func NewQueryHandler(query *services.QueryService, sessions repository.SessionRepo) *QueryHandler {
	return &QueryHandler{
		query:    query,
		sessions: sessions,
	}
}

// HandleQuery answers a question against the indexed documents and appends
// the exchange to the session.
func (h *QueryHandler) HandleQuery(c *gin.Context) {
	var req types.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	var history []types.QAPair
	if req.SessionID != "" {
		h2, err := h.sessions.RecentHistory(req.SessionID, chatHistoryWindow)
		if err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		history = h2
	}

	result, err := h.query.Answer(c.Request.Context(), req.Question, history, req.K, req.Filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.SessionID != "" {
		if err := h.sessions.Append(req.SessionID, result.Question, result.Answer, result.Sources); err != nil {
			log.Printf("Warning: failed to append to session %s: %v", req.SessionID, err)
		}
	}

	c.JSON(http.StatusOK, result)
}
