package storage

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

type Disk struct {
	dir     string
	baseURL string
	now     func() time.Time
}

func NewDisk(dir, baseURL string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Disk{dir: dir, baseURL: baseURL, now: time.Now}, nil
}

func (d *Disk) Dir() string { return d.dir }

func (d *Disk) Upload(ctx context.Context, data []byte, filename, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := objectName(filename, d.now())
	if err := os.WriteFile(filepath.Join(d.dir, name), data, 0o644); err != nil {
		return "", err
	}
	return d.baseURL + "/" + name, nil
}
