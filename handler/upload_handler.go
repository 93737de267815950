package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	services "github.com/tieubaoca/ragdocs-be/service"
	"github.com/tieubaoca/ragdocs-be/types"
)

const maxUploadSize = 50 << 20 // 50MB

type UploadHandler struct {
	fileService *services.FileService
}

func NewUploadHandler(fileService *services.FileService) *UploadHandler {
	return &UploadHandler{
		fileService: fileService,
	}
}

// UploadDocumentHandler accepts a multipart upload with optional "tag" and
// "force" form values and starts a background ingestion job.
func (h *UploadHandler) UploadDocumentHandler(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid file",
		})
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "File too large",
		})
		return
	}

	tag := c.Request.FormValue("tag")
	force, _ := strconv.ParseBool(c.Request.FormValue("force"))

	result, err := h.fileService.Upload(header.Filename, file, tag, force)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrUnsupportedFileType) || errors.Is(err, services.ErrInvalidTag) {
			status = http.StatusBadRequest
		}
		c.JSON(status, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   result,
	})
}

// TagsHandler lists the accepted document tags.
func (h *UploadHandler) TagsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tags": services.DocumentTags})
}
