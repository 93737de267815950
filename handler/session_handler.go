package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/ragdocs-be/repository"
)

type SessionHandler struct {
	sessions repository.SessionRepo
}

func NewSessionHandler(sessions repository.SessionRepo) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
	}
}

func (h *SessionHandler) CreateSession(c *gin.Context) {
	session, err := h.sessions.Create()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) ListSessions(c *gin.Context) {
	summaries, err := h.sessions.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": summaries})
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.sessions.Get(c.Param("id"))
	if errors.Is(err, repository.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	err := h.sessions.Delete(c.Param("id"))
	if errors.Is(err, repository.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
