package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"testing"
	"time"
)

type ipv4Server struct {
	URL string
	srv *http.Server
	ln  net.Listener
}

func newIPv4Server(t *testing.T, handler http.Handler) *ipv4Server {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		if errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM) {
			t.Skipf("skipping test: cannot open local listener (%v)", err)
		}
		t.Fatalf("listen tcp4: %v", err)
	}
	srv := &http.Server{Handler: handler}
	s := &ipv4Server{
		URL: "http://" + ln.Addr().String(),
		srv: srv,
		ln:  ln,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(fmt.Sprintf("test server serve: %v", err))
		}
	}()
	return s
}

func (s *ipv4Server) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = s.srv.Shutdown(ctx)
}

func TestUploadSendsSingleFilePart(t *testing.T) {
	var gotName, gotContent, gotReqID string
	var parts int
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/uploadcsv" {
			http.NotFound(w, r)
			return
		}
		gotReqID = r.Header.Get("X-Request-Id")
		mr, err := r.MultipartReader()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			parts++
			if p.FormName() == FormField {
				gotName = p.FileName()
				b, _ := io.ReadAll(p)
				gotContent = string(b)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"file_url": "http://x/f.csv"})
	}))
	defer srv.Close()

	c := New(2*time.Second, 0)
	resp, err := c.Upload(context.Background(), srv.URL+"/uploadcsv", "data.csv", strings.NewReader("a,b\n1,2\n"))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if parts != 1 || gotName != "data.csv" || gotContent != "a,b\n1,2\n" {
		t.Fatalf("unexpected multipart: parts=%d name=%q content=%q", parts, gotName, gotContent)
	}
	if gotReqID == "" || resp.RequestID != gotReqID {
		t.Fatalf("request id not propagated: sent=%q resp=%q", gotReqID, resp.RequestID)
	}
	if resp.ContentType() != "application/json" {
		t.Fatalf("content type: %q", resp.ContentType())
	}
}

func TestUploadStatusErrorIncludesServiceMessage(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-Id", "req_test_123")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{"detail": "file is required"})
	}))
	defer srv.Close()

	c := New(2*time.Second, 0)
	_, err := c.Upload(context.Background(), srv.URL, "a.csv", strings.NewReader("x"))
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusUnprocessableEntity || se.Message != "file is required" {
		t.Fatalf("unexpected status error: %+v", se)
	}
	if !strings.Contains(err.Error(), "req_test_123") {
		t.Fatalf("expected request id in error, got: %v", err)
	}
}

func TestUploadTimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := New(5*time.Second, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Upload(ctx, srv.URL, "a.csv", strings.NewReader("x"))
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !te.Timeout() {
		t.Fatalf("expected timeout classification, got %v", err)
	}
}

func TestUploadRejectsOversizedBody(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("x"), 64))
	}))
	defer srv.Close()

	c := New(2*time.Second, 16)
	_, err := c.Upload(context.Background(), srv.URL, "a.xlsx", strings.NewReader("x"))
	var tooLarge *ResponseTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected ResponseTooLargeError, got %v", err)
	}
}

func TestDownload(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/download/abc.csv" {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "File not found"})
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="processed.csv"`)
		_, _ = io.WriteString(w, "a,b,ValidationErrors\n")
	}))
	defer srv.Close()

	c := New(2*time.Second, 0)
	var buf bytes.Buffer
	n, err := c.Download(context.Background(), srv.URL+"/download/abc.csv", &buf)
	if err != nil {
		t.Fatalf("Download error: %v", err)
	}
	if n != int64(buf.Len()) || buf.String() != "a,b,ValidationErrors\n" {
		t.Fatalf("unexpected download: n=%d body=%q", n, buf.String())
	}

	_, err = c.Download(context.Background(), srv.URL+"/download/missing.csv", io.Discard)
	var se *StatusError
	if !errors.As(err, &se) || se.Message != "File not found" {
		t.Fatalf("expected not-found StatusError, got %v", err)
	}
}

func TestResponseFilename(t *testing.T) {
	r := &Response{Header: http.Header{"Content-Disposition": {"attachment; filename=processed.xlsx"}}}
	if got := r.Filename(); got != "processed.xlsx" {
		t.Fatalf("Filename() = %q", got)
	}
	if got := (&Response{Header: http.Header{}}).Filename(); got != "" {
		t.Fatalf("expected empty filename, got %q", got)
	}
}
