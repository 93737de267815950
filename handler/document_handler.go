package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/ragdocs-be/repository"
	services "github.com/tieubaoca/ragdocs-be/service"
)

type DocumentHandler struct {
	docs        repository.DocumentRepo
	fileService *services.FileService
}

func NewDocumentHandler(docs repository.DocumentRepo, fileService *services.FileService) *DocumentHandler {
	return &DocumentHandler{
		docs:        docs,
		fileService: fileService,
	}
}

func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	docs, err := h.docs.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

func (h *DocumentHandler) GetDocument(c *gin.Context) {
	doc, err := h.docs.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	id := c.Param("id")
	doc, err := h.docs.Get(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}
	if err := h.fileService.DeleteDocument(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
