package core

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_KeyedMutex_Serializes_Same_Key(t *testing.T) {
	// Arrange
	m := NewKeyedMutex()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		running int
		maxSeen int
	)

	// Act
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock("chat-1")
			defer unlock()

			mu.Lock()
			running++
			if running > maxSeen {
				maxSeen = running
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
		}()
	}
	wg.Wait()

	// Assert
	require.Equal(t, 1, maxSeen)
	require.Equal(t, 0, m.Len())
}

func Test_KeyedMutex_Does_Not_Block_Other_Keys(t *testing.T) {
	// Arrange
	m := NewKeyedMutex()
	unlock := m.Lock("chat-1")
	defer unlock()

	done := make(chan struct{})

	// Act
	go func() {
		release := m.Lock("chat-2")
		release()
		close(done)
	}()

	// Assert
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on an unrelated key blocked")
	}
}
