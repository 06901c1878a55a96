package media

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		name string
		file File
		want string
	}{
		{"explicit header wins", File{Name: "a.bin", ContentType: "video/mp4"}, "video/mp4"},
		{"octet stream falls back to extension", File{Name: "clip.MP4", ContentType: "application/octet-stream"}, "video/mp4"},
		{"image extension", File{Name: "thumb.jpeg"}, "image/jpeg"},
		{"unknown extension", File{Name: "notes.txt"}, "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, contentTypeFor(tt.file))
		})
	}
}

func TestObjectKey(t *testing.T) {
	key := objectKey(KindVideo, "Intro.MOV")

	assert.True(t, strings.HasPrefix(key, "videos/"))
	assert.True(t, strings.HasSuffix(key, ".mov"))
	assert.NotEqual(t, key, objectKey(KindVideo, "Intro.MOV"))
}

func TestPublicURL(t *testing.T) {
	s := &GCSStore{bucket: "lms-media"}
	assert.Equal(t, "https://storage.googleapis.com/lms-media/images/a.png", s.publicURL("images/a.png"))

	s.cdnDomain = "cdn.example.com"
	assert.Equal(t, "https://cdn.example.com/images/a.png", s.publicURL("images/a.png"))
}
