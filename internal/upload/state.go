package upload

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/sheetscan-cli/internal/filetype"
	"github.com/KaramelBytes/sheetscan-cli/internal/stats"
)

// Phase is the orchestrator's position in one upload cycle.
type Phase int

const (
	Idle Phase = iota
	Submitting
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// File is a user-selected file: a name plus a way to read its content.
type File struct {
	Name string
	Size int64
	open func() (io.ReadCloser, error)
}

// FileFromPath references a file on disk without reading it.
func FileFromPath(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &File{
		Name: filepath.Base(path),
		Size: info.Size(),
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// FileFromBytes wraps in-memory content.
func FileFromBytes(name string, content []byte) *File {
	return &File{
		Name: name,
		Size: int64(len(content)),
		open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(content)), nil },
	}
}

// Open returns a fresh reader over the file content.
func (f *File) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("file %s has no content", f.Name)
	}
	return f.open()
}

// State is a snapshot of one upload cycle. Artifact and Statistics are only
// set in Succeeded; ErrorMessage and Err only in Failed, or after an
// unsupported selection (Phase stays Idle).
type State struct {
	SelectedFile   *File
	Classification filetype.Classification
	Phase          Phase
	Artifact       *Artifact
	Statistics     *stats.FileStatistics
	ErrorMessage   string
	Err            error
}

func (s *State) clearResults() {
	s.Artifact = nil
	s.Statistics = nil
	s.ErrorMessage = ""
	s.Err = nil
}

func (s *State) fail(e *Error) {
	s.clearResults()
	s.Phase = Failed
	s.ErrorMessage = e.Message
	s.Err = e
}
