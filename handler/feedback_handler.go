package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/ragdocs-be/repository"
	"github.com/tieubaoca/ragdocs-be/types"
)

type FeedbackHandler struct {
	feedback repository.FeedbackRepo
}

func NewFeedbackHandler(feedback repository.FeedbackRepo) *FeedbackHandler {
	return &FeedbackHandler{
		feedback: feedback,
	}
}

func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	var req types.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Feedback != types.FeedbackPositive && req.Feedback != types.FeedbackNegative {
		c.JSON(http.StatusBadRequest, gin.H{"error": "feedback must be positive or negative"})
		return
	}
	if err := h.feedback.Add(req.Query, req.Answer, req.Feedback); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
