package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/sheetscan-cli/internal/stats"
	"github.com/KaramelBytes/sheetscan-cli/internal/utils"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func parseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "md", "markdown":
		return formatText, nil
	case "json":
		return formatJSON, nil
	case "yaml", "yml":
		return formatYAML, nil
	default:
		return "", fmt.Errorf("unsupported --format: %s (use text|json|yaml)", s)
	}
}

func encodeStats(s *stats.FileStatistics, format string) ([]byte, error) {
	switch format {
	case formatJSON:
		b, err := utils.PrettyJSON(s)
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case formatYAML:
		b, err := yaml.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		return b, nil
	default:
		return []byte(s.Markdown()), nil
	}
}

func renderStats(w io.Writer, s *stats.FileStatistics, format string) error {
	b, err := encodeStats(s, format)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// formatForPath picks an encoding from a file extension, defaulting to JSON.
func formatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	case ".md", ".txt":
		return formatText
	default:
		return formatJSON
	}
}

func writeStatsFile(path string, s *stats.FileStatistics) error {
	b, err := encodeStats(s, formatForPath(path))
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("create stats dir: %w", err)
	}
	return utils.SafeWriteFile(path, b)
}

// readStatsFile loads a statistics record saved as JSON or YAML.
func readStatsFile(path string) (*stats.FileStatistics, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stats: %w", err)
	}
	if formatForPath(path) != formatYAML {
		return stats.Parse(b)
	}
	var s stats.FileStatistics
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", stats.ErrMalformed, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
