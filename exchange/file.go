package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/poiesic/morphit/core"
)

// FileTransport exchanges documents through two well-known files in one
// directory. It implements both Transport and Requester.
type FileTransport struct {
	settings
	dir string
}

var (
	_ Transport = (*FileTransport)(nil)
	_ Requester = (*FileTransport)(nil)
)

// NewFileTransport returns a transport rooted at dir. The directory is
// created on first use.
func NewFileTransport(dir string, opts ...Option) (*FileTransport, error) {
	if dir == "" {
		return nil, ErrDirRequired
	}
	s, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &FileTransport{settings: s, dir: filepath.Clean(dir)}, nil
}

// Dir returns the exchange directory.
func (t *FileTransport) Dir() string {
	return t.dir
}

// RequestPath returns the path of the request document.
func (t *FileTransport) RequestPath() string {
	return filepath.Join(t.dir, RequestFile)
}

// ResponsePath returns the path of the response document.
func (t *FileTransport) ResponsePath() string {
	return filepath.Join(t.dir, ResponseFile)
}

// EnsureDir creates the exchange directory if needed.
func (t *FileTransport) EnsureDir() error {
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create exchange directory: %w", err)
	}
	return nil
}

// Receive reads the pending request. Producers outside this package may
// write the file in place, so undecodable content is re-read a few times
// before it is reported as malformed. A missing or unreadable file is
// reported at once.
func (t *FileTransport) Receive(ctx context.Context) (*core.Request, error) {
	var data []byte
	var readErr error
	err := t.retry(ctx, "request", func() error {
		data, readErr = os.ReadFile(t.RequestPath())
		if readErr != nil {
			return nil
		}
		if !json.Valid(data) {
			return fmt.Errorf("request is not valid json (%d bytes)", len(data))
		}
		return nil
	})

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	case errors.Is(readErr, os.ErrNotExist):
		return nil, nil
	case readErr != nil:
		return nil, fmt.Errorf("failed to read request: %w", readErr)
	case err != nil:
		return &core.Request{}, fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}

	return decodeRequest(data)
}

// Respond writes the response document and removes the request. The
// request is removed even when the write fails so it is not answered
// again on the next tick.
func (t *FileTransport) Respond(ctx context.Context, req *core.Request, resp *core.Response) error {
	if err := t.EnsureDir(); err != nil {
		return err
	}
	var writeErr, removeErr error
	if err := writeJSON(t.ResponsePath(), resp); err != nil {
		writeErr = fmt.Errorf("failed to write response: %w", err)
	}
	if err := removeIfExists(t.RequestPath()); err != nil {
		removeErr = fmt.Errorf("failed to remove request: %w", err)
	}
	if err := errors.Join(writeErr, removeErr); err != nil {
		return err
	}
	t.logger.Debug("response written", "path", t.ResponsePath(), "status", resp.Status)
	return nil
}

// Submit writes a request for prompt and polls for its response.
func (t *FileTransport) Submit(ctx context.Context, prompt string, timeout time.Duration) (*core.Response, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if err := t.EnsureDir(); err != nil {
		return nil, err
	}
	if err := removeIfExists(t.ResponsePath()); err != nil {
		return nil, fmt.Errorf("failed to remove stale response: %w", err)
	}

	req := newRequest(prompt)
	if err := writeJSON(t.RequestPath(), req); err != nil {
		return nil, fmt.Errorf("failed to write request: %w", err)
	}
	t.logger.Debug("request written", "id", req.ID, "path", t.RequestPath())

	return t.await(ctx, req, timeout)
}

// Ping submits a status check. On timeout the request is withdrawn so an
// absent bridge does not find it later.
func (t *FileTransport) Ping(ctx context.Context, timeout time.Duration) (*core.Response, error) {
	resp, err := t.Submit(ctx, core.StatusCheckPrompt, timeout)
	if errors.Is(err, ErrTimeout) {
		if rmErr := removeIfExists(t.RequestPath()); rmErr != nil {
			t.logger.Warn("failed to withdraw status check", "error", rmErr)
		}
	}
	return resp, err
}

// Reset removes both documents.
func (t *FileTransport) Reset(ctx context.Context) error {
	return errors.Join(removeIfExists(t.RequestPath()), removeIfExists(t.ResponsePath()))
}

func (t *FileTransport) await(ctx context.Context, req *core.Request, timeout time.Duration) (*core.Response, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		resp, err := t.readResponse(ctx)
		if err != nil {
			return nil, err
		}
		if resp != nil {
			if answers(resp, req) {
				if err := removeIfExists(t.ResponsePath()); err != nil {
					t.logger.Warn("failed to remove response", "error", err)
				}
				return resp, nil
			}
			t.logger.Debug("ignoring response to another request", "want", req.ID, "got", resp.ID)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
		case <-ticker.C:
		}
	}
}

// readResponse returns nil when no response exists yet.
func (t *FileTransport) readResponse(ctx context.Context) (*core.Response, error) {
	var resp *core.Response
	err := t.retry(ctx, "response", func() error {
		data, err := os.ReadFile(t.ResponsePath())
		if errors.Is(err, os.ErrNotExist) {
			resp = nil
			return nil
		}
		if err != nil {
			return err
		}
		resp, err = decodeResponse(data)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrCorruptResponse, err)
	}
	return resp, nil
}

// writeJSON replaces path atomically so readers never see a partial file.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
