package handler

import (
	"fmt"
	"net/http"

	"filevault/internal/middleware"
	"filevault/internal/services"
	"filevault/internal/store"
	"filevault/internal/transport/httpdto"
	apperrors "filevault/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AttachmentHandler struct {
	service *services.AttachmentService
}

func NewAttachmentHandler(service *services.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

func principalID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.PrincipalID(c)
	if !ok {
		c.Error(apperrors.Unauthorized("user not authenticated"))
	}
	return id, ok
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperrors.InvalidInput("invalid attachment id"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *AttachmentHandler) Upload(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(apperrors.InvalidInput("no file uploaded"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperrors.InvalidInput("no file uploaded"))
		return
	}
	defer file.Close()

	attachment, err := h.service.UploadFile(c.Request.Context(), userID, file, fileHeader.Filename)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(attachment))
}

func (h *AttachmentHandler) Download(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		return
	}
	fileID, ok := pathID(c)
	if !ok {
		return
	}

	body, attachment, err := h.service.DownloadFile(c.Request.Context(), fileID, userID)
	if err != nil {
		c.Error(err)
		return
	}
	defer body.Close()

	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", attachment.FileName),
	}
	c.DataFromReader(http.StatusOK, -1, "application/octet-stream", body, headers)
}

func (h *AttachmentHandler) GetByID(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		return
	}
	fileID, ok := pathID(c)
	if !ok {
		return
	}

	attachment, err := h.service.GetByID(c.Request.Context(), fileID, userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(attachment))
}

func (h *AttachmentHandler) Rename(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		return
	}
	fileID, ok := pathID(c)
	if !ok {
		return
	}

	var req httpdto.UpdateFileNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.InvalidInput("invalid file name"))
		return
	}

	attachment, err := h.service.RenameFile(c.Request.Context(), fileID, userID, req.NewFileName)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(attachment))
}

func (h *AttachmentHandler) Delete(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		return
	}
	fileID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteFile(c.Request.Context(), fileID, userID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "file deleted successfully"}))
}

func (h *AttachmentHandler) Share(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		return
	}

	var req httpdto.ShareFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.InvalidInput("invalid share payload"))
		return
	}

	fileID, err := uuid.Parse(req.FileID)
	if err != nil {
		c.Error(apperrors.InvalidInput("invalid attachment id"))
		return
	}
	recipientIDs := make([]uuid.UUID, 0, len(req.UserIDs))
	for _, raw := range req.UserIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.Error(apperrors.InvalidInput("invalid user id"))
			return
		}
		recipientIDs = append(recipientIDs, id)
	}

	result, err := h.service.ShareFile(c.Request.Context(), userID, fileID, recipientIDs)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(result))
}

func (h *AttachmentHandler) List(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		return
	}

	var query httpdto.ListAttachmentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.Error(apperrors.InvalidInput("invalid pagination parameters"))
		return
	}

	listing, err := h.service.ListUserAttachments(c.Request.Context(), userID, store.Page{
		Number: query.Page,
		Size:   query.Limit,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(listing))
}
