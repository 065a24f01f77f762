package event

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyBus fails the first failures publishes, then succeeds
type flakyBus struct {
	mu       sync.Mutex
	calls    int
	failures int
}

func (b *flakyBus) Publish(ctx context.Context, e Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.failures < 0 || b.calls <= b.failures {
		return errors.New("bus unavailable")
	}
	return nil
}

func (b *flakyBus) Subscribe(Type, Handler) {}

func (b *flakyBus) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func readDeadLetters(t *testing.T, path string) []DeadLetterEntry {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	entries, err := ReadDeadLetters(f)
	require.NoError(t, err)
	return entries
}

func TestResilientPublisher_SuccessfulPublish(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deadletter.jsonl")
	bus := &flakyBus{}
	rp, err := NewResilientPublisher(bus, 3, 10*time.Millisecond, path)
	require.NoError(t, err)

	rp.PublishWithRetry(context.Background(), Event{Version: EventSchemaVersion, Type: SignIn})

	require.NoError(t, rp.Shutdown(context.Background()))
	assert.Equal(t, 1, bus.Calls())
	assert.Empty(t, readDeadLetters(t, path))
}

func TestResilientPublisher_RetrySucceeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deadletter.jsonl")
	bus := &flakyBus{failures: 2}
	rp, err := NewResilientPublisher(bus, 3, 5*time.Millisecond, path)
	require.NoError(t, err)

	rp.PublishWithRetry(context.Background(), Event{Version: EventSchemaVersion, Type: Breakthrough})

	assert.Eventually(t, func() bool { return bus.Calls() == 3 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, rp.Shutdown(context.Background()))
	assert.Empty(t, readDeadLetters(t, path))
}

func TestResilientPublisher_RetryExhaustionWritesDeadLetter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deadletter.jsonl")
	bus := &flakyBus{failures: -1}
	rp, err := NewResilientPublisher(bus, 2, 5*time.Millisecond, path)
	require.NoError(t, err)

	rp.PublishWithRetry(context.Background(), NewSignInEvent(LuckChangedPayloadV1{CharacterID: "c1"}))

	// initial attempt + 2 retries
	assert.Eventually(t, func() bool { return bus.Calls() == 3 }, 2*time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		f, err := os.Stat(path)
		return err == nil && f.Size() > 0
	}, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, rp.Shutdown(context.Background()))

	entries := readDeadLetters(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, SignIn, entries[0].Event.Type)
	assert.Equal(t, "c1", entries[0].CharacterID)
	assert.Equal(t, 2, entries[0].Attempts)
	assert.Equal(t, DeadLetterSchemaVersion, entries[0].SchemaVersion)
}

func TestResilientPublisher_ShutdownDeadLettersPendingRetries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deadletter.jsonl")
	bus := &flakyBus{failures: -1}
	rp, err := NewResilientPublisher(bus, 5, time.Hour, path)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		rp.PublishWithRetry(context.Background(), Event{Version: EventSchemaVersion, Type: CultivationTick})
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, rp.Shutdown(ctx))
	assert.Len(t, readDeadLetters(t, path), 3)

	// a second shutdown is a no-op
	assert.NoError(t, rp.Shutdown(context.Background()))
}

func TestNewDeadLetterWriter_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "logs", "deadletter.jsonl")
	w, err := NewDeadLetterWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(Event{Version: EventSchemaVersion, Type: CultivationTick}, 1, errors.New("down")))
	require.NoError(t, w.Close())

	entries := readDeadLetters(t, path)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].CharacterID)
	assert.Equal(t, "down", entries[0].LastError)
}

func TestReadDeadLetters(t *testing.T) {
	t.Run("skips blank lines", func(t *testing.T) {
		in := `{"schema_version":"2.0","event":{"type":"cultivation.tick"},"attempts":3}` + "\n\n"
		entries, err := ReadDeadLetters(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, 3, entries[0].Attempts)
	})

	t.Run("reports the bad line", func(t *testing.T) {
		in := `{"attempts":1}` + "\nnot json\n"
		entries, err := ReadDeadLetters(strings.NewReader(in))
		assert.ErrorContains(t, err, "line 2")
		assert.Len(t, entries, 1)
	})
}
