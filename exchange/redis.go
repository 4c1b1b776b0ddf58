package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/poiesic/morphit/core"
	"github.com/redis/go-redis/v9"
)

// RedisTransport exchanges documents through a redis list and per-request
// response keys. It implements both Transport and Requester.
//
// Requests are pushed onto "<prefix>:requests" and popped one per Receive.
// Responses are stored at "<prefix>:response:<id>" with a TTL.
type RedisTransport struct {
	settings
	client redis.Cmdable
}

var (
	_ Transport = (*RedisTransport)(nil)
	_ Requester = (*RedisTransport)(nil)
)

// NewRedisTransport returns a transport over client.
func NewRedisTransport(client redis.Cmdable, opts ...Option) (*RedisTransport, error) {
	if client == nil {
		return nil, ErrClientRequired
	}
	s, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &RedisTransport{settings: s, client: client}, nil
}

// RequestsKey returns the list holding pending requests.
func (t *RedisTransport) RequestsKey() string {
	return t.prefix + ":requests"
}

// ResponseKey returns the key a response to id is stored under.
func (t *RedisTransport) ResponseKey(id string) string {
	if id == "" {
		return t.prefix + ":response"
	}
	return t.prefix + ":response:" + id
}

// Receive pops the oldest pending request.
func (t *RedisTransport) Receive(ctx context.Context) (*core.Request, error) {
	data, err := t.client.LPop(ctx, t.RequestsKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop request: %w", err)
	}
	return decodeRequest(data)
}

// Respond stores resp under the request's response key. The request was
// already removed from the list by Receive.
func (t *RedisTransport) Respond(ctx context.Context, req *core.Request, resp *core.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	id := ""
	if req != nil {
		id = req.ID
	}
	if err := t.client.Set(ctx, t.ResponseKey(id), data, t.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store response: %w", err)
	}
	t.logger.Debug("response stored", "key", t.ResponseKey(id), "status", resp.Status)
	return nil
}

// Submit queues a request for prompt and polls for its response.
func (t *RedisTransport) Submit(ctx context.Context, prompt string, timeout time.Duration) (*core.Response, error) {
	req := newRequest(prompt)
	resp, _, err := t.submit(ctx, req, timeout)
	return resp, err
}

// Ping submits a status check and removes it from the queue on timeout.
func (t *RedisTransport) Ping(ctx context.Context, timeout time.Duration) (*core.Response, error) {
	req := newRequest(core.StatusCheckPrompt)
	resp, payload, err := t.submit(ctx, req, timeout)
	if errors.Is(err, ErrTimeout) {
		if rmErr := t.client.LRem(context.WithoutCancel(ctx), t.RequestsKey(), 1, payload).Err(); rmErr != nil {
			t.logger.Warn("failed to withdraw status check", "error", rmErr)
		}
	}
	return resp, err
}

// Reset drops the request queue and every stored response.
func (t *RedisTransport) Reset(ctx context.Context) error {
	keys := []string{t.RequestsKey(), t.ResponseKey("")}
	iter := t.client.Scan(ctx, 0, t.ResponseKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan responses: %w", err)
	}
	if err := t.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete exchange keys: %w", err)
	}
	return nil
}

func (t *RedisTransport) submit(ctx context.Context, req *core.Request, timeout time.Duration) (*core.Response, []byte, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode request: %w", err)
	}
	if err := t.client.RPush(ctx, t.RequestsKey(), payload).Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to queue request: %w", err)
	}
	t.logger.Debug("request queued", "id", req.ID, "key", t.RequestsKey())

	resp, err := t.await(ctx, req, timeout)
	return resp, payload, err
}

func (t *RedisTransport) await(ctx context.Context, req *core.Request, timeout time.Duration) (*core.Response, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	key := t.ResponseKey(req.ID)
	for {
		resp, err := t.readResponse(ctx, key)
		if err != nil {
			return nil, err
		}
		if resp != nil {
			if err := t.client.Del(ctx, key).Err(); err != nil {
				t.logger.Warn("failed to delete response", "key", key, "error", err)
			}
			return resp, nil
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

func (t *RedisTransport) readResponse(ctx context.Context, key string) (*core.Response, error) {
	var resp *core.Response
	err := t.retry(ctx, "response", func() error {
		data, err := t.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
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
