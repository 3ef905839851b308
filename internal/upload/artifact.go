package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/sheetscan-cli/internal/utils"
)

// ArtifactKind distinguishes hosted artifacts from ones held in memory.
type ArtifactKind int

const (
	// Remote artifacts are already hosted by the service at URL.
	Remote ArtifactKind = iota + 1
	// InMemory artifacts carry the processed bytes in Data.
	InMemory
)

// Artifact is the processed file returned by the service.
type Artifact struct {
	Kind     ArtifactKind
	URL      string
	Data     []byte
	Filename string
}

// Reference returns a printable handle for the artifact.
func (a *Artifact) Reference() string {
	if a.Kind == Remote {
		return a.URL
	}
	return fmt.Sprintf("memory:%s (%d bytes)", a.Filename, len(a.Data))
}

// Downloader fetches a hosted artifact.
type Downloader interface {
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

// Save writes the artifact to path, or to the suggested filename inside dir
// when path is a directory. Remote artifacts are fetched through dl.
func (a *Artifact) Save(ctx context.Context, dl Downloader, path string) (string, error) {
	if path == "" {
		path = "."
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, a.Filename)
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	data := a.Data
	if a.Kind == Remote {
		if dl == nil {
			return "", fmt.Errorf("no downloader for remote artifact %s", a.URL)
		}
		var buf bytes.Buffer
		if _, err := dl.Download(ctx, a.URL, &buf); err != nil {
			return "", fmt.Errorf("download artifact: %w", err)
		}
		data = buf.Bytes()
	}
	if err := utils.SafeWriteFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}
