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


package launcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/poiesic/morphit/metrics"
)

const (
	// ModelPlaceholder in an argument is replaced by the model path.
	ModelPlaceholder = "{model}"

	DefaultStartupGrace = 2 * time.Second

	maxOutput = 64 * 1024
)

// DefaultArgs starts a morphit bridge on the model database.
var DefaultArgs = []string{"bridge", "--db", ModelPlaceholder}

// Result describes a successful launch.
type Result struct {
	PID     int
	Command []string
	Message string
}

// Launcher starts the host process and remembers whether it ever succeeded.
// There is no automatic retry.
type Launcher struct {
	executable string
	model      string
	args       []string
	grace      time.Duration
	logger     *slog.Logger
	metrics    *metrics.Metrics

	mu       sync.Mutex
	launched bool
	cmd      *exec.Cmd
	exited   chan struct{}
	output   *tailBuffer
}

// Option configures a Launcher.
type Option func(*Launcher) error

// WithArgs replaces the argument list. ModelPlaceholder is substituted.
func WithArgs(args ...string) Option {
	return func(l *Launcher) error {
		l.args = args
		return nil
	}
}

// WithStartupGrace sets how long a fresh process must survive to count
// as started.
func WithStartupGrace(grace time.Duration) Option {
	return func(l *Launcher) error {
		if grace < 0 {
			return fmt.Errorf("startup grace must not be negative, got %s", grace)
		}
		l.grace = grace
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Launcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// WithMetrics reports launch attempts to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Launcher) error {
		l.metrics = m
		return nil
	}
}

// New creates a launcher for executable and model.
func New(executable, model string, opts ...Option) (*Launcher, error) {
	if executable == "" {
		return nil, ErrExecutableRequired
	}
	l := &Launcher{
		executable: executable,
		model:      model,
		args:       DefaultArgs,
		grace:      DefaultStartupGrace,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Executable returns the configured executable.
func (l *Launcher) Executable() string {
	return l.executable
}

// Model returns the configured model path.
func (l *Launcher) Model() string {
	return l.model
}

// Command returns the full command line Launch runs.
func (l *Launcher) Command() []string {
	model := l.model
	if abs, err := filepath.Abs(model); err == nil {
		model = abs
	}
	cmd := make([]string, 0, len(l.args)+1)
	cmd = append(cmd, l.executable)
	for _, arg := range l.args {
		cmd = append(cmd, strings.ReplaceAll(arg, ModelPlaceholder, model))
	}
	return cmd
}

// Launch verifies the executable and model exist, starts the host and
// waits out the startup grace period. A process that exits within the
// grace period is reported as ErrExitedEarly with its output.
func (l *Launcher) Launch(ctx context.Context) (*Result, error) {
	result, err := l.launch(ctx)
	l.metrics.ObserveLaunch(err == nil)
	return result, err
}

func (l *Launcher) launch(ctx context.Context) (*Result, error) {
	path, err := exec.LookPath(l.executable)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrExecutableNotFound, l.executable)
	}
	if _, err := os.Stat(l.model); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, l.model)
	}

	command := l.Command()
	cmd := exec.Command(path, command[1:]...)
	output := &tailBuffer{limit: maxOutput}
	cmd.Stdout = output
	cmd.Stderr = output
	cmd.WaitDelay = time.Second

	l.logger.Info("starting host", "command", strings.Join(command, " "))
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStartFailed, err)
	}

	exited := make(chan struct{})
	go func() {
		err := cmd.Wait()
		l.logger.Info("host exited", "pid", cmd.Process.Pid, "error", err)
		close(exited)
	}()

	timer := time.NewTimer(l.grace)
	defer timer.Stop()

	select {
	case <-exited:
		return nil, fmt.Errorf("%w (%s): %s", ErrExitedEarly, cmd.ProcessState, strings.TrimSpace(output.String()))
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-exited
		return nil, ctx.Err()
	case <-timer.C:
	}

	l.mu.Lock()
	l.launched = true
	l.cmd = cmd
	l.exited = exited
	l.output = output
	l.mu.Unlock()

	l.logger.Info("host started", "pid", cmd.Process.Pid)
	return &Result{
		PID:     cmd.Process.Pid,
		Command: command,
		Message: fmt.Sprintf("Host started with %s", filepath.Base(l.model)),
	}, nil
}

// Launched reports whether a launch has succeeded since the last Reset.
func (l *Launcher) Launched() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.launched
}

// Reset forgets that the host was launched. A running process is left alone.
func (l *Launcher) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.launched = false
}

// PID returns the process id of the last launched host, or 0.
func (l *Launcher) PID() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cmd == nil {
		return 0
	}
	return l.cmd.Process.Pid
}

// Running reports whether the last launched host is still alive.
func (l *Launcher) Running() bool {
	l.mu.Lock()
	exited := l.exited
	l.mu.Unlock()
	if exited == nil {
		return false
	}
	select {
	case <-exited:
		return false
	default:
		return true
	}
}

// Output returns the tail of the host's combined output.
func (l *Launcher) Output() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.output == nil {
		return ""
	}
	return l.output.String()
}

// Terminate interrupts the host and kills it if it has not exited after
// timeout.
func (l *Launcher) Terminate(timeout time.Duration) error {
	l.mu.Lock()
	cmd, exited := l.cmd, l.exited
	l.mu.Unlock()
	if cmd == nil || !l.Running() {
		return ErrNotRunning
	}

	if err := cmd.Process.Signal(os.Interrupt); err != nil && !errors.Is(err, os.ErrProcessDone) {
		l.logger.Warn("failed to interrupt host, killing", "error", err)
		_ = cmd.Process.Kill()
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-exited:
		return nil
	case <-timer.C:
		if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return err
		}
		<-exited
		return nil
	}
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = b.buf[over:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
