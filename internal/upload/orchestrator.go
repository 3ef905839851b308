package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/KaramelBytes/sheetscan-cli/internal/client"
	"github.com/KaramelBytes/sheetscan-cli/internal/filetype"
)

// DefaultTimeout bounds a single submission.
const DefaultTimeout = 30 * time.Second

// Submitter posts a file to a processing endpoint.
type Submitter interface {
	Upload(ctx context.Context, endpoint, filename string, content io.Reader) (*client.Response, error)
}

// Endpoints holds the processing endpoint for each supported classification.
type Endpoints struct {
	CSV   string
	Table string
}

// For returns the endpoint that accepts files of classification c.
func (e Endpoints) For(c filetype.Classification) string {
	switch c {
	case filetype.CSV:
		return e.CSV
	case filetype.Excel:
		return e.Table
	default:
		return ""
	}
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets the logger used for submission diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// Orchestrator drives one upload cycle: select, submit, interpret.
//
// Every Select, Reset and Submit advances a sequence number. A response is
// applied only if the sequence is unchanged when it arrives, so a reply for
// a file the user has since replaced never touches the state.
type Orchestrator struct {
	mu        sync.Mutex
	state     State
	seq       uint64
	sub       Submitter
	endpoints Endpoints
	timeout   time.Duration
	logger    *slog.Logger
}

// New returns an idle orchestrator.
func New(sub Submitter, endpoints Endpoints, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sub:       sub,
		endpoints: endpoints,
		timeout:   DefaultTimeout,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns a copy of the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Select replaces the selected file and clears any previous result.
// Unsupported files are discarded immediately with an explanatory message.
func (o *Orchestrator) Select(f *File) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seq++
	o.state = State{}
	if f == nil {
		return o.state
	}
	class := filetype.Classify(f.Name)
	if !class.Supported() {
		e := &Error{Kind: KindUnsupportedFileType, Message: MsgUnsupported}
		o.state.ErrorMessage = e.Message
		o.state.Err = e
		o.logger.Debug("rejected file", "file", f.Name)
		return o.state
	}
	o.state.SelectedFile = f
	o.state.Classification = class
	return o.state
}

// Reset returns to an empty idle state.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seq++
	o.state = State{}
}

// Submit uploads the selected file and blocks until the attempt finishes.
// It is a no-op unless a supported file is selected. The returned state is
// the orchestrator's state after the attempt, which is unaffected by this
// attempt if it went stale in the meantime.
func (o *Orchestrator) Submit(ctx context.Context) State {
	o.mu.Lock()
	f, class := o.state.SelectedFile, o.state.Classification
	if f == nil || !class.Supported() {
		s := o.state
		o.mu.Unlock()
		return s
	}
	o.seq++
	seq := o.seq
	o.state.clearResults()
	o.state.Phase = Submitting
	endpoint := o.endpoints.For(class)
	interpret := interpreterFor(class)
	o.mu.Unlock()

	logger := o.logger.With("seq", seq, "file", f.Name, "classification", class.String())
	logger.Info("submitting file", "endpoint", endpoint, "size", f.Size)
	start := time.Now()
	res, uerr := o.send(ctx, f, endpoint, interpret, logger)

	o.mu.Lock()
	defer o.mu.Unlock()
	if seq != o.seq {
		logger.Debug("discarding stale response", "current_seq", o.seq)
		return o.state
	}
	if uerr != nil {
		o.state.fail(uerr)
		logger.Warn("upload failed", "kind", uerr.Kind.String(), "message", uerr.Message, "error", uerr.Err, "elapsed", time.Since(start))
		return o.state
	}
	o.state.Phase = Succeeded
	o.state.Artifact = res.artifact
	o.state.Statistics = res.statistics
	logger.Info("upload succeeded", "artifact", res.artifact.Reference(), "statistics", res.statistics != nil, "elapsed", time.Since(start))
	return o.state
}

func (o *Orchestrator) send(ctx context.Context, f *File, endpoint string, interpret interpreter, logger *slog.Logger) (*result, *Error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	rc, err := f.Open()
	if err != nil {
		return nil, &Error{Kind: KindTransportFailure, Message: MsgUploadFailed, Err: err}
	}
	defer rc.Close()

	resp, err := o.sub.Upload(ctx, endpoint, f.Name, rc)
	if err != nil {
		if isTimeout(err) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &Error{Kind: KindTimeout, Message: fmt.Sprintf(msgTimeoutFormat, o.timeout), Err: err}
		}
		return nil, &Error{Kind: KindTransportFailure, Message: MsgUploadFailed, Err: err}
	}
	return interpret(resp, logger)
}

func isTimeout(err error) bool {
	var te *client.TransportError
	if errors.As(err, &te) {
		return te.Timeout()
	}
	return errors.Is(err, context.DeadlineExceeded)
}
