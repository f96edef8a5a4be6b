package models

import (
	"mime"
	"path"
	"strings"
	"time"
)

type Post struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt *time.Time  `json:"updatedAt"`
	State     EntityState `json:"deletedAt"`
}

type MediaType string

const (
	MediaImage    MediaType = "image"
	MediaVideo    MediaType = "video"
	MediaDocument MediaType = "document"
	MediaAudio    MediaType = "audio"
	MediaOther    MediaType = "other"
)

type PostMedia struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	MediaURL  string    `json:"mediaUrl"`
	MediaType MediaType `json:"mediaType"`
	MimeType  string    `json:"mimeType"`
	Width     *int32    `json:"width"`
	Height    *int32    `json:"height"`
	FileSize  *int32    `json:"fileSize"`
	CreatedAt time.Time `json:"createdAt"`
}

// extraMimeTypes covers media extensions missing from the builtin mime table
// on minimal hosts.
var extraMimeTypes = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
	".heic": "image/heic",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
}

// ClassifyMedia derives the mime type and media kind from a media url's
// extension. Unknown extensions map to application/octet-stream.
func ClassifyMedia(mediaURL string) (string, MediaType) {
	u := mediaURL
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}

	ext := strings.ToLower(path.Ext(u))
	mimeType, ok := extraMimeTypes[ext]
	if !ok {
		mimeType = mime.TypeByExtension(ext)
	}
	if mimeType == "" {
		return "application/octet-stream", MediaOther
	}
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return mimeType, MediaImage
	case strings.HasPrefix(mimeType, "video/"):
		return mimeType, MediaVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return mimeType, MediaAudio
	case mimeType == "application/pdf",
		strings.HasPrefix(mimeType, "text/"),
		strings.Contains(mimeType, "document"),
		strings.Contains(mimeType, "msword"),
		strings.Contains(mimeType, "spreadsheet"),
		strings.Contains(mimeType, "presentation"):
		return mimeType, MediaDocument
	default:
		return mimeType, MediaOther
	}
}

type PostComment struct {
	ID        string      `json:"id"`
	PostID    string      `json:"postId"`
	UserID    string      `json:"userId"`
	ParentID  *string     `json:"parentId"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt *time.Time  `json:"updatedAt"`
	State     EntityState `json:"deletedAt"`
}
