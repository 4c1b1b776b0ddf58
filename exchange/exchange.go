package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/morphit/core"
)

const (
	// RequestFile is the name of the request document in a file exchange.
	RequestFile = "character_request.json"
	// ResponseFile is the name of the response document in a file exchange.
	ResponseFile = "character_response.json"

	DefaultPollInterval = 500 * time.Millisecond
	DefaultTimeout      = 30 * time.Second
	DefaultPrefix       = "morphit"
	DefaultResponseTTL  = 5 * time.Minute

	defaultRetryAttempts = 3
	defaultRetryDelay    = 50 * time.Millisecond
)

// Transport is the consumer side of an exchange, used by the bridge.
type Transport interface {
	// Receive returns the pending request, or nil when none is waiting.
	// A request that cannot be decoded is returned alongside an error
	// wrapping ErrMalformedRequest so it can still be answered.
	Receive(ctx context.Context) (*core.Request, error)
	// Respond publishes resp as the answer to req and clears req.
	Respond(ctx context.Context, req *core.Request, resp *core.Response) error
}

// Requester is the producer side of an exchange, used by the frontend.
type Requester interface {
	// Submit sends prompt and blocks until a response arrives, timeout
	// elapses (ErrTimeout) or ctx is done.
	Submit(ctx context.Context, prompt string, timeout time.Duration) (*core.Response, error)
	// Ping sends a status check and withdraws it if nobody answers.
	Ping(ctx context.Context, timeout time.Duration) (*core.Response, error)
	// Reset removes any pending request and response.
	Reset(ctx context.Context) error
}

type settings struct {
	logger        *slog.Logger
	pollInterval  time.Duration
	retryAttempts int
	retryDelay    time.Duration
	prefix        string
	ttl           time.Duration
}

func defaultSettings() settings {
	return settings{
		logger:        slog.Default(),
		pollInterval:  DefaultPollInterval,
		retryAttempts: defaultRetryAttempts,
		retryDelay:    defaultRetryDelay,
		prefix:        DefaultPrefix,
		ttl:           DefaultResponseTTL,
	}
}

// Option configures a transport.
type Option func(*settings) error

// WithLogger sets the logger. A nil logger selects slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithPollInterval sets how often a requester checks for its response.
func WithPollInterval(interval time.Duration) Option {
	return func(s *settings) error {
		if interval <= 0 {
			return fmt.Errorf("poll interval must be positive, got %s", interval)
		}
		s.pollInterval = interval
		return nil
	}
}

// WithRetry sets how many times a document that fails to decode is re-read.
func WithRetry(attempts int, baseDelay time.Duration) Option {
	return func(s *settings) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		s.retryAttempts = attempts
		s.retryDelay = baseDelay
		return nil
	}
}

// WithPrefix sets the key prefix used by the redis transport.
func WithPrefix(prefix string) Option {
	return func(s *settings) error {
		if prefix == "" {
			return fmt.Errorf("key prefix must not be empty")
		}
		s.prefix = prefix
		return nil
	}
}

// WithResponseTTL sets how long the redis transport keeps a response.
func WithResponseTTL(ttl time.Duration) Option {
	return func(s *settings) error {
		if ttl <= 0 {
			return fmt.Errorf("response ttl must be positive, got %s", ttl)
		}
		s.ttl = ttl
		return nil
	}
}

func applyOptions(opts []Option) (settings, error) {
	s := defaultSettings()
	for _, opt := range opts {
		if err := opt(&s); err != nil {
			return s, err
		}
	}
	return s, nil
}

func newRequest(prompt string) *core.Request {
	return &core.Request{
		ID:        uuid.NewString(),
		Timestamp: core.Timestamp(time.Now()),
		Prompt:    prompt,
		Status:    core.StatusPending,
	}
}

func decodeRequest(data []byte) (*core.Request, error) {
	var req core.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return &core.Request{}, fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}
	if err := core.ValidateRequest(&req); err != nil {
		return &req, fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}
	return &req, nil
}

func decodeResponse(data []byte) (*core.Response, error) {
	var resp core.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	if err := core.ValidateResponse(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// answers reports whether resp belongs to req. Responses without an id
// come from bridges that predate ids and are accepted.
func answers(resp *core.Response, req *core.Request) bool {
	return resp.ID == "" || resp.ID == req.ID
}
