package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
	"masterboxer.com/social-feed/apperror"
)

type Uploader interface {
	Upload(ctx context.Context, data []byte, filename, contentType string) (string, error)
}

// UploadFile stores the multipart field "file" and responds with its url.
func UploadFile(store Uploader, maxBytes int64, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

		file, header, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &tooLarge):
				apperror.Write(w, apperror.New(http.StatusRequestEntityTooLarge, "File too large"))
			default:
				apperror.Write(w, apperror.BadRequest("File field is required"))
			}
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			apperror.Write(w, apperror.BadRequest("Failed to read file"))
			return
		}

		contentType := header.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = http.DetectContentType(data)
		}

		url, err := store.Upload(r.Context(), data, header.Filename, contentType)
		if err != nil {
			log.Errorw("upload failed", "filename", header.Filename, "error", err)
			apperror.Write(w, apperror.Internal("Failed to upload file"))
			return
		}

		writeJSON(w, http.StatusCreated, map[string]string{"url": url})
	}
}
