package host

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Readier tells the host shell that the app has finished initializing.
type Readier interface {
	Ready(ctx context.Context) error
}

// Nop is a Readier for running without a host shell.
type Nop struct{}

func (Nop) Ready(context.Context) error { return nil }

// HTTPReadier posts the ready event to a URL.
type HTTPReadier struct {
	URL    string
	App    string
	Client *http.Client
}

type readyEvent struct {
	Event string `json:"event"`
	App   string `json:"app"`
}

func (h HTTPReadier) Ready(ctx context.Context) error {
	body, err := json.Marshal(readyEvent{Event: "ready", App: h.App})
	if err != nil {
		return fmt.Errorf("host: cannot encode ready event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("host: cannot build ready request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("host: ready request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("host: ready rejected with status %d", resp.StatusCode)
	}
	return nil
}

// NewReadier returns an HTTPReadier for url, or Nop when url is empty.
func NewReadier(url, app string) Readier {
	if url == "" {
		return Nop{}
	}
	return HTTPReadier{URL: url, App: app}
}

// SignalReady sends the ready signal once. Failure is logged and otherwise
// ignored; the app keeps running. Returns whether the host acknowledged it.
func SignalReady(ctx context.Context, r Readier, timeout time.Duration, logger *log.Logger) bool {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := r.Ready(ctx); err != nil {
		if logger != nil {
			logger.Warn("host ready signal failed", "error", err)
		}
		return false
	}
	if logger != nil {
		logger.Debug("host ready signal sent")
	}
	return true
}
