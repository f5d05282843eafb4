package session

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndBuffer(t *testing.T) {
	st := NewStore(0)

	require.NoError(t, st.Append("u1", "first"))
	require.NoError(t, st.Append("u1", "second"))

	assert.Equal(t, "first\nsecond", st.Get("u1").Buffer())
	assert.True(t, st.Get("u1").HasText())
	assert.False(t, st.Get("u2").HasText(), "fresh session starts empty")
}

func TestAppendBufferLimit(t *testing.T) {
	st := NewStore(10)

	require.NoError(t, st.Append("u1", "12345"))
	err := st.Append("u1", "6789012345")
	assert.ErrorIs(t, err, ErrBufferFull)

	// The rejected fragment must not be applied.
	assert.Equal(t, "12345", st.Get("u1").Buffer())
}

func TestClearKeepsVoicePreference(t *testing.T) {
	st := NewStore(0)
	st.SetVoice("u1", "ja-JP-KeitaNeural")
	require.NoError(t, st.Append("u1", "text"))

	st.Clear("u1")

	assert.False(t, st.Get("u1").HasText())
	assert.Equal(t, "ja-JP-KeitaNeural", st.VoiceOrDefault("u1", "fallback"))
}

func TestVoiceOrDefault(t *testing.T) {
	st := NewStore(0)
	assert.Equal(t, "fallback", st.VoiceOrDefault("u1", "fallback"))

	st.SetVoice("u1", "en-US-GuyNeural")
	assert.Equal(t, "en-US-GuyNeural", st.VoiceOrDefault("u1", "fallback"))
}

func TestDebounceCoalescing(t *testing.T) {
	st := NewStore(0)
	const delay = 100 * time.Millisecond

	var flushes atomic.Int32
	var got atomic.Value

	start := time.Now()
	var fired atomic.Value

	flush := func(s *Session) {
		flushes.Add(1)
		got.Store(s.Buffer())
		fired.Store(time.Since(start))
	}

	// Three fragments, each gap well under the window.
	require.NoError(t, st.Append("u1", "one"))
	st.Touch("u1", delay, flush)
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, st.Append("u1", "two"))
	st.Touch("u1", delay, flush)
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, st.Append("u1", "three"))
	st.Touch("u1", delay, flush)

	time.Sleep(3 * delay)

	require.Equal(t, int32(1), flushes.Load(), "exactly one flush for coalesced fragments")
	assert.Equal(t, "one\ntwo\nthree", got.Load())

	elapsed := fired.Load().(time.Duration)
	assert.GreaterOrEqual(t, elapsed, 60*time.Millisecond+delay,
		"flush must wait for the last fragment's window")
}

func TestDebounceFiresOncePerTouch(t *testing.T) {
	st := NewStore(0)
	var flushes atomic.Int32

	require.NoError(t, st.Append("u1", "text"))
	st.Touch("u1", 20*time.Millisecond, func(*Session) { flushes.Add(1) })

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), flushes.Load())
}

func TestClearCancelsPendingFlush(t *testing.T) {
	st := NewStore(0)
	var flushes atomic.Int32

	require.NoError(t, st.Append("u1", "text"))
	st.Touch("u1", 30*time.Millisecond, func(*Session) { flushes.Add(1) })
	st.Clear("u1")

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), flushes.Load(), "cleared session must not flush")
}

func TestFlushRacingClearIsNoOp(t *testing.T) {
	st := NewStore(0)
	var flushes atomic.Int32

	// Arm a timer, then clear the buffer without cancelling it: the fired
	// callback must see the empty buffer and do nothing.
	require.NoError(t, st.Append("u1", "text"))
	st.Touch("u1", 20*time.Millisecond, func(*Session) { flushes.Add(1) })

	s := st.Get("u1")
	s.mu.Lock()
	s.buffer = nil
	s.mu.Unlock()

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), flushes.Load())
}

func TestSessionIsolation(t *testing.T) {
	st := NewStore(0)
	const delay = 40 * time.Millisecond

	var mu sync.Mutex
	flushed := make(map[string]string)
	flush := func(s *Session) {
		mu.Lock()
		defer mu.Unlock()
		flushed[s.UserID] = s.Buffer()
	}

	var wg sync.WaitGroup
	for _, user := range []string{"alice", "bob"} {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				assert.NoError(t, st.Append(user, fmt.Sprintf("%s-%d", user, i)))
				st.Touch(user, delay, flush)
			}
		}(user)
	}
	wg.Wait()
	time.Sleep(4 * delay)

	mu.Lock()
	defer mu.Unlock()
	for _, user := range []string{"alice", "bob"} {
		require.Contains(t, flushed, user)
		for i := 0; i < 5; i++ {
			assert.Contains(t, flushed[user], fmt.Sprintf("%s-%d", user, i))
		}
		other := "bob"
		if user == "bob" {
			other = "alice"
		}
		assert.NotContains(t, flushed[user], other+"-", "buffers must never mix across users")
	}
}

func TestTryBeginGenerate(t *testing.T) {
	st := NewStore(0)
	s := st.Get("u1")

	require.True(t, s.TryBeginGenerate())
	assert.False(t, s.TryBeginGenerate(), "second tap while in flight is rejected")

	s.EndGenerate()
	assert.True(t, s.TryBeginGenerate())
}
