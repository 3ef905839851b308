package filetype

import "strings"

// Classification tags a file by the processing pipeline that accepts it.
type Classification int

const (
	Unsupported Classification = iota
	CSV
	Excel
)

// suffixes are checked in order; the first match wins.
var suffixes = []struct {
	ext   string
	class Classification
}{
	{".csv", CSV},
	{".xlsx", Excel},
	{".xls", Excel},
}

// Classify returns the classification for a file name by case-insensitive suffix.
func Classify(name string) Classification {
	lower := strings.ToLower(name)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s.ext) {
			return s.class
		}
	}
	return Unsupported
}

// Supported reports whether files of this classification can be submitted.
func (c Classification) Supported() bool {
	return c == CSV || c == Excel
}

// SuggestedFilename is the download name for a processed artifact.
func (c Classification) SuggestedFilename() string {
	switch c {
	case CSV:
		return "processed.csv"
	case Excel:
		return "processed.xlsx"
	default:
		return ""
	}
}

func (c Classification) String() string {
	switch c {
	case CSV:
		return "csv"
	case Excel:
		return "excel"
	default:
		return "unsupported"
	}
}
