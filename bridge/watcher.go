// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/poiesic/morphit/core"
	"github.com/poiesic/morphit/exchange"
	"github.com/poiesic/morphit/mapper"
	"github.com/poiesic/morphit/metrics"
	"github.com/poiesic/morphit/morph"
	"github.com/poiesic/morphit/scene"
	"github.com/poiesic/morphit/storage"
)

const (
	DefaultInterval     = 500 * time.Millisecond
	DefaultMaleTarget   = "mb_male"
	DefaultFemaleTarget = "mb_female"

	MessageGenerated   = "Character generated successfully!"
	MessageStatusCheck = "Bridge is running."
)

// fileExchange is implemented by transports backed by a directory. The
// watcher uses it to wake up as soon as a request file appears.
type fileExchange interface {
	EnsureDir() error
	Dir() string
	RequestPath() string
}

// Watcher polls a transport for requests and applies them to the scene.
type Watcher struct {
	transport   exchange.Transport
	mapper      *mapper.Mapper
	applier     *morph.Applier
	scene       *scene.Scene
	generations storage.GenerationRepository
	metrics     *metrics.Metrics
	logger      *slog.Logger

	interval     time.Duration
	maleTarget   string
	femaleTarget string

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}

	// serializes ticks from the loop and from callers
	tickMu sync.Mutex
}

// Option configures a Watcher.
type Option func(*Watcher) error

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		w.logger = logger
		return nil
	}
}

// WithInterval sets the polling interval.
func WithInterval(interval time.Duration) Option {
	return func(w *Watcher) error {
		if interval <= 0 {
			return fmt.Errorf("interval must be positive, got %s", interval)
		}
		w.interval = interval
		return nil
	}
}

// WithTargets sets the object name prefixes used for each gender.
func WithTargets(male, female string) Option {
	return func(w *Watcher) error {
		if male == "" || female == "" {
			return errors.New("target names must not be empty")
		}
		w.maleTarget = male
		w.femaleTarget = female
		return nil
	}
}

// WithGenerations records every processed request in repo.
func WithGenerations(repo storage.GenerationRepository) Option {
	return func(w *Watcher) error {
		w.generations = repo
		return nil
	}
}

// WithMetrics reports processing to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Watcher) error {
		w.metrics = m
		return nil
	}
}

// New creates an idle watcher.
func New(transport exchange.Transport, m *mapper.Mapper, sc *scene.Scene, opts ...Option) (*Watcher, error) {
	if transport == nil {
		return nil, ErrTransportRequired
	}
	if m == nil {
		return nil, ErrMapperRequired
	}
	if sc == nil {
		return nil, ErrSceneRequired
	}

	w := &Watcher{
		transport:    transport,
		mapper:       m,
		scene:        sc,
		logger:       slog.Default(),
		interval:     DefaultInterval,
		maleTarget:   DefaultMaleTarget,
		femaleTarget: DefaultFemaleTarget,
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}

	applier, err := morph.NewApplier(morph.WithLogger(w.logger))
	if err != nil {
		return nil, err
	}
	w.applier = applier
	return w, nil
}

// State returns the current state.
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Watcher) transition(from, to State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == from {
		w.state = to
	}
}

// Start moves the watcher from Idle to Watching and begins polling in the
// background. The loop ends when ctx is done or Stop is called; either way
// the watcher returns to Idle and may be started again.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Idle {
		return ErrAlreadyRunning
	}

	var fsw *fsnotify.Watcher
	if fx, ok := w.transport.(fileExchange); ok {
		if err := fx.EnsureDir(); err != nil {
			return err
		}
		fsw = w.watchDir(fx.Dir())
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.state = Watching
	go w.run(runCtx, fsw, w.done)

	w.logger.Info("bridge watching for requests", "interval", w.interval, "notify", fsw != nil)
	return nil
}

// Stop moves the watcher back to Idle, waiting for an in-flight request to
// finish. Stopping an idle watcher does nothing.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.state == Idle || w.cancel == nil {
		w.mu.Unlock()
		return
	}
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done
	w.logger.Info("bridge stopped")
}

// Wait blocks until the background loop has exited.
func (w *Watcher) Wait() {
	w.mu.Lock()
	done := w.done
	w.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (w *Watcher) watchDir(dir string) *fsnotify.Watcher {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Warn("file notifications unavailable, polling only", "error", err)
		return nil
	}
	if err := fsw.Add(dir); err != nil {
		w.logger.Warn("failed to watch exchange directory, polling only", "dir", dir, "error", err)
		fsw.Close()
		return nil
	}
	return fsw
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	defer w.finish(done)

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
		target string
	)
	if fsw != nil {
		defer fsw.Close()
		events, errs = fsw.Events, fsw.Errors
		target = filepath.Clean(w.transport.(fileExchange).RequestPath())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			w.loopTick(ctx)

		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(event.Name) == target && (event.Has(fsnotify.Create) || event.Has(fsnotify.Write)) {
				w.logger.Debug("request file changed", "op", event.Op.String())
				w.loopTick(ctx)
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// finish returns the watcher to Idle once the loop that owns done exits.
func (w *Watcher) finish(done chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done != done {
		return
	}
	w.cancel()
	w.state = Idle
	w.cancel = nil
	w.done = nil
}

func (w *Watcher) loopTick(ctx context.Context) {
	if _, err := w.Tick(ctx); err != nil && !errors.Is(err, ErrNotWatching) {
		w.logger.Error("tick failed", "error", err)
	}
}

// Tick checks the transport once. When a request is pending it is
// processed and answered, and Tick reports true. Processing is not
// interrupted by ctx; only receiving is.
func (w *Watcher) Tick(ctx context.Context) (bool, error) {
	w.tickMu.Lock()
	defer w.tickMu.Unlock()

	if w.State() == Idle {
		return false, ErrNotWatching
	}

	req, recvErr := w.transport.Receive(ctx)
	if req == nil {
		if recvErr != nil {
			return false, fmt.Errorf("failed to receive request: %w", recvErr)
		}
		return false, nil
	}

	w.transition(Watching, Processing)
	defer w.transition(Processing, Watching)

	workCtx := context.WithoutCancel(ctx)
	resp := w.process(workCtx, req, recvErr)
	if err := w.transport.Respond(workCtx, req, resp); err != nil {
		return true, fmt.Errorf("failed to respond: %w", err)
	}
	return true, nil
}

// outcome collects what happened while handling one request.
type outcome struct {
	gender   core.Gender
	target   string
	category string
	report   *morph.Report
}

func (o *outcome) missing() int {
	if o.report == nil {
		return 0
	}
	return len(o.report.Missing)
}

func (w *Watcher) process(ctx context.Context, req *core.Request, recvErr error) *core.Response {
	start := time.Now()
	out := &outcome{}

	resp := w.handle(ctx, req, recvErr, out)

	w.metrics.ObserveGeneration(resp.Status, out.missing(), time.Since(start))
	if req.Prompt != core.StatusCheckPrompt {
		w.record(ctx, req, resp, out, start)
	}
	return resp
}

func (w *Watcher) handle(ctx context.Context, req *core.Request, recvErr error, out *outcome) (resp *core.Response) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("recovered from panic", "panic", r, "stack", string(debug.Stack()))
			resp = errorResponse(req, fmt.Sprintf("Error: %s: %v", ErrProcessingPanic, r))
		}
	}()

	if recvErr != nil {
		w.logger.Warn("rejecting request", "error", recvErr)
		return errorResponse(req, fmt.Sprintf("Error: %v", recvErr))
	}

	w.logger.Info("received request", "id", req.ID, "prompt", req.Prompt)

	if req.Prompt == core.StatusCheckPrompt {
		return completedResponse(req, MessageStatusCheck, nil)
	}

	err := w.generate(ctx, req, out)
	switch {
	case errors.Is(err, scene.ErrObjectNotFound):
		w.logger.Error("character object not found", "gender", out.gender, "target", out.target)
		return errorResponse(req, fmt.Sprintf("Could not find character object for %s in scene.", out.gender))
	case err != nil:
		w.logger.Error("failed to apply prompt", "error", err)
		return errorResponse(req, fmt.Sprintf("Error: %v", err))
	}
	return completedResponse(req, MessageGenerated, out.report.AppliedNames())
}

func (w *Watcher) generate(ctx context.Context, req *core.Request, out *outcome) error {
	analysis := w.mapper.Inspect(req.Prompt)
	out.gender = analysis.Gender
	if analysis.CategoryDetected {
		out.category = analysis.Category
	}
	out.target = w.targetFor(analysis.Gender)

	character, err := w.scene.Object(out.target)
	if err != nil {
		return err
	}
	out.target = character.Name()

	report, err := w.applier.Apply(ctx, character, analysis.Parameters)
	out.report = report
	if err != nil {
		return err
	}

	if err := w.scene.Save(ctx, character); err != nil {
		w.logger.Warn("failed to persist character", "character", character.Name(), "error", err)
	}
	return nil
}

func (w *Watcher) targetFor(gender core.Gender) string {
	if gender == core.GenderFemale {
		return w.femaleTarget
	}
	return w.maleTarget
}

func (w *Watcher) record(ctx context.Context, req *core.Request, resp *core.Response, out *outcome, at time.Time) {
	if w.generations == nil {
		return
	}
	gen := &core.Generation{
		RequestID: req.ID,
		Prompt:    req.Prompt,
		Target:    out.target,
		Gender:    out.gender,
		Category:  out.category,
		Status:    resp.Status,
		Message:   resp.Message,
		Timestamp: at,
	}
	if out.report != nil {
		gen.Applied = out.report.Applied
		gen.Missing = out.report.Missing
	}
	if _, err := w.generations.AddGenerations(ctx, gen); err != nil {
		w.logger.Warn("failed to record generation", "error", err)
	}
}

func completedResponse(req *core.Request, message string, parameters []string) *core.Response {
	return &core.Response{
		ID:         req.ID,
		Timestamp:  core.Timestamp(time.Now()),
		Prompt:     req.Prompt,
		Status:     core.StatusCompleted,
		Message:    message,
		Parameters: parameters,
	}
}

func errorResponse(req *core.Request, message string) *core.Response {
	return &core.Response{
		ID:        req.ID,
		Timestamp: core.Timestamp(time.Now()),
		Prompt:    req.Prompt,
		Status:    core.StatusError,
		Message:   message,
	}
}
