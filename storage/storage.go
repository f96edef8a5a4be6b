package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"masterboxer.com/social-feed/config"
)

// Backend persists uploaded files and returns a public url for them.
type Backend interface {
	Upload(ctx context.Context, data []byte, filename, contentType string) (string, error)
}

// New picks the backend named by STORAGE_TYPE.
func New(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.StorageType {
	case "", "disk":
		return NewDisk(cfg.UploadDir, cfg.ServerURL+"/uploads")
	case "s3":
		return NewS3(ctx, cfg.AWSRegion, cfg.AWSBucketName)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}
}

// LocalDir returns the directory a backend writes into, or "" when files
// are not kept on this host.
func LocalDir(b Backend) string {
	if d, ok := b.(*Disk); ok {
		return d.Dir()
	}
	return ""
}

// objectName turns "photo.png" into "photo_<unix millis>.png" so repeated
// uploads of the same name never collide.
func objectName(filename string, now time.Time) string {
	base := filepath.Base(filepath.Clean("/" + filename))
	if base == "/" || base == "." {
		base = "file"
	}
	base = strings.ReplaceAll(base, " ", "_")

	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	if name == "" {
		name = "file"
	}
	return fmt.Sprintf("%s_%d%s", name, now.UnixMilli(), ext)
}
