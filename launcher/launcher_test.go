package launcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shell = "/bin/sh"

func touchModel(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "base.blend")
	require.NoError(t, os.WriteFile(path, []byte("model"), 0o644))
	return path
}

func TestNew(t *testing.T) {
	_, err := New("", "model")
	assert.ErrorIs(t, err, ErrExecutableRequired)

	_, err = New(shell, "model", WithStartupGrace(-time.Second))
	assert.Error(t, err)

	l, err := New("/opt/host/bin/host", "/data/scene.db")
	require.NoError(t, err)
	assert.Equal(t, []string{"/opt/host/bin/host", "bridge", "--db", "/data/scene.db"}, l.Command())
	assert.False(t, l.Launched())
	assert.Zero(t, l.PID())
	assert.False(t, l.Running())
}

func TestCommand_SubstitutesModel(t *testing.T) {
	l, err := New("host", "/models/base.blend", WithArgs("{model}", "--python", "startup.py", "--model={model}"))
	require.NoError(t, err)
	assert.Equal(t, []string{"host", "/models/base.blend", "--python", "startup.py", "--model=/models/base.blend"}, l.Command())
}

func TestLaunch_ExecutableNotFound(t *testing.T) {
	l, err := New("/nonexistent/host", touchModel(t))
	require.NoError(t, err)

	_, err = l.Launch(context.Background())
	assert.ErrorIs(t, err, ErrExecutableNotFound)
	assert.False(t, l.Launched())
}

func TestLaunch_ModelNotFound(t *testing.T) {
	l, err := New(shell, filepath.Join(t.TempDir(), "missing.blend"))
	require.NoError(t, err)

	_, err = l.Launch(context.Background())
	assert.ErrorIs(t, err, ErrModelNotFound)
	assert.False(t, l.Launched())
}

func TestLaunch_ExitedEarly(t *testing.T) {
	l, err := New(shell, touchModel(t),
		WithArgs("-c", "echo scripts disabled; echo traceback >&2; exit 3"),
		WithStartupGrace(5*time.Second))
	require.NoError(t, err)

	start := time.Now()
	_, err = l.Launch(context.Background())
	require.ErrorIs(t, err, ErrExitedEarly)
	assert.Contains(t, err.Error(), "scripts disabled")
	assert.Contains(t, err.Error(), "traceback")
	assert.Contains(t, err.Error(), "exit status 3")
	assert.Less(t, time.Since(start), 5*time.Second, "early exit does not wait out the grace period")
	assert.False(t, l.Launched())
}

func TestLaunch_Success(t *testing.T) {
	model := touchModel(t)
	l, err := New(shell, model,
		WithArgs("-c", "echo ready; exec sleep 30", "{model}"),
		WithStartupGrace(100*time.Millisecond))
	require.NoError(t, err)

	result, err := l.Launch(context.Background())
	require.NoError(t, err)
	defer l.Terminate(time.Second)

	assert.True(t, l.Launched())
	assert.True(t, l.Running())
	assert.Equal(t, result.PID, l.PID())
	assert.NotZero(t, result.PID)
	assert.Equal(t, "Host started with base.blend", result.Message)
	assert.Equal(t, model, result.Command[len(result.Command)-1])
	assert.Eventually(t, func() bool { return l.Output() == "ready\n" }, time.Second, 10*time.Millisecond)

	l.Reset()
	assert.False(t, l.Launched())
	assert.True(t, l.Running(), "reset leaves the process alone")

	require.NoError(t, l.Terminate(time.Second))
	assert.False(t, l.Running())
	assert.ErrorIs(t, l.Terminate(time.Second), ErrNotRunning)
}

func TestLaunch_ContextCanceled(t *testing.T) {
	l, err := New(shell, touchModel(t),
		WithArgs("-c", "exec sleep 30"),
		WithStartupGrace(10*time.Second))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = l.Launch(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, l.Launched())
}

func TestTailBuffer(t *testing.T) {
	b := &tailBuffer{limit: 4}
	b.Write([]byte("ab"))
	b.Write([]byte("cdef"))
	assert.Equal(t, "cdef", b.String())
}
