package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"eventhub/internal/microservices/http-api/dto"
	"eventhub/internal/microservices/http-api/middleware"
	"eventhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	uploadService service.UploadService
	maxBytes      int64
}

func NewUploadHandler(uploadService service.UploadService, maxBytes int64) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, maxBytes: maxBytes}
}

// RegisterRoutes expects rg to be guarded by the auth middleware.
func (h *UploadHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/image", h.UploadImage)
	rg.DELETE("/image", h.DeleteImage)
}

func (h *UploadHandler) tooLarge() string {
	return fmt.Sprintf("File size too large. Maximum %dMB allowed", h.maxBytes>>20)
}

func (h *UploadHandler) UploadImage(c *gin.Context) {
	// leave room for the multipart envelope around the file
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)

	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			fail(c, http.StatusBadRequest, h.tooLarge())
			return
		}
		fail(c, http.StatusBadRequest, "No file provided")
		return
	}
	if header.Size > h.maxBytes {
		fail(c, http.StatusBadRequest, h.tooLarge())
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		respondError(c, fmt.Errorf("read upload: %w", err))
		return
	}
	if int64(len(data)) > h.maxBytes {
		fail(c, http.StatusBadRequest, h.tooLarge())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	result, err := h.uploadService.Upload(ctx, middleware.CurrentUser(c), c.PostForm("type"), data)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Image uploaded successfully", gin.H{"data": result})
}

func (h *UploadHandler) DeleteImage(c *gin.Context) {
	var req dto.DeleteImageRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.uploadService.Delete(ctx, middleware.CurrentUser(c), req); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Image deleted successfully", nil)
}
