package media

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

type Kind string

const (
	KindImage Kind = "images"
	KindVideo Kind = "videos"
)

var ErrEmptyFile = errors.New("media: empty file")

// File is an upload handle taken from a multipart request.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Object identifies a stored file. ID is what Delete expects.
type Object struct {
	ID  string `json:"media_id"`
	URL string `json:"url"`
}

// Store persists uploaded media. Upload failures are returned to the caller;
// Delete is treated as best-effort by every caller, which logs and continues.
type Store interface {
	Upload(ctx context.Context, kind Kind, file File) (*Object, error)
	Delete(ctx context.Context, id string) error
}

func contentTypeFor(file File) string {
	if file.ContentType != "" && file.ContentType != "application/octet-stream" {
		return file.ContentType
	}
	switch strings.ToLower(path.Ext(file.Name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".mp4", ".m4v":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	}
	return "application/octet-stream"
}
