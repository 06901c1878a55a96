package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/SAP-F-2025/learning-service/internal/media"
	"github.com/gin-gonic/gin"
)

func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

// formFile opens an optional multipart file. The returned closer must be
// called when file is non-nil.
func formFile(c *gin.Context, field string) (*media.File, io.Closer, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	return openUpload(header)
}

func openUpload(header *multipart.FileHeader) (*media.File, io.Closer, error) {
	f, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	return &media.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        f,
	}, f, nil
}

// optionalForm returns nil when the form field was not sent.
func optionalForm(c *gin.Context, field string) *string {
	value, ok := c.GetPostForm(field)
	if !ok {
		return nil
	}
	return &value
}
