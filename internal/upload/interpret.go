package upload

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/KaramelBytes/sheetscan-cli/internal/client"
	"github.com/KaramelBytes/sheetscan-cli/internal/filetype"
	"github.com/KaramelBytes/sheetscan-cli/internal/stats"
)

// StatisticsHeader carries the JSON statistics on the table endpoint.
const StatisticsHeader = "X-Statistics"

type result struct {
	artifact   *Artifact
	statistics *stats.FileStatistics
}

// interpreter turns a 2xx response into a result for one classification.
type interpreter func(resp *client.Response, logger *slog.Logger) (*result, *Error)

// interpreterFor resolves the response format once, at submission time.
func interpreterFor(c filetype.Classification) interpreter {
	switch c {
	case filetype.CSV:
		return interpretJSON
	case filetype.Excel:
		return interpretBinary
	default:
		return nil
	}
}

// interpretJSON handles {file_url, statistics?, error?} bodies.
func interpretJSON(resp *client.Response, logger *slog.Logger) (*result, *Error) {
	if !gjson.ValidBytes(resp.Body) || !gjson.ParseBytes(resp.Body).IsObject() {
		return nil, &Error{Kind: KindMalformedResponse, Message: MsgNoFileURL}
	}
	fileURL := gjson.GetBytes(resp.Body, "file_url")
	if fileURL.Type != gjson.String || strings.TrimSpace(fileURL.String()) == "" {
		return nil, &Error{Kind: KindMalformedResponse, Message: serviceError(resp.Body, MsgNoFileURL)}
	}
	out := &result{artifact: &Artifact{
		Kind:     Remote,
		URL:      fileURL.String(),
		Filename: filetype.CSV.SuggestedFilename(),
	}}
	if raw := gjson.GetBytes(resp.Body, "statistics"); raw.Exists() && raw.Type != gjson.Null {
		s, err := stats.Parse([]byte(raw.Raw))
		if err != nil {
			logger.Warn("ignoring malformed statistics", "error", err, "request_id", resp.RequestID)
		} else {
			out.statistics = s
		}
	}
	return out, nil
}

// interpretBinary handles a raw file body with statistics in a header.
func interpretBinary(resp *client.Response, logger *slog.Logger) (*result, *Error) {
	// The service reports processing failures as a JSON envelope with a 2xx status.
	if resp.ContentType() == "application/json" {
		return nil, &Error{Kind: KindMalformedResponse, Message: serviceError(resp.Body, MsgNoFile)}
	}
	if len(resp.Body) == 0 {
		return nil, &Error{Kind: KindMalformedResponse, Message: MsgNoFile}
	}
	name := artifactName(resp.Filename(), filetype.Excel.SuggestedFilename())
	out := &result{artifact: &Artifact{Kind: InMemory, Data: resp.Body, Filename: name}}
	if h := resp.Header.Get(StatisticsHeader); h != "" {
		s, err := stats.ParseHeader(h)
		if err != nil {
			logger.Warn("ignoring statistics header",
				"kind", KindMalformedStatisticsHeader.String(),
				"error", err,
				"request_id", resp.RequestID)
		} else {
			out.statistics = s
		}
	}
	return out, nil
}

// artifactName accepts a service-suggested filename only when it is a bare
// name with an extension.
func artifactName(suggested, fallback string) string {
	name := filepath.Base(suggested)
	if suggested == "" || name != suggested || name == "." || name == ".." || filepath.Ext(name) == "" {
		return fallback
	}
	return name
}

func serviceError(body []byte, fallback string) string {
	if v := gjson.GetBytes(body, "error"); v.Type == gjson.String && strings.TrimSpace(v.String()) != "" {
		return v.String()
	}
	return fallback
}
