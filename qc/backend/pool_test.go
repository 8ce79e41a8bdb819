package backend

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolAcquireBlocksUntilReleased(t *testing.T) {
	require := require.New(t)
	p, err := NewPool(newStatevectorBackend, 1, Config{})
	require.NoError(err)

	b1, tok1 := p.Acquire()
	require.NotNil(b1)

	acquired := make(chan struct{})
	go func() {
		b2, tok2 := p.Acquire()
		assert.NotNil(t, b2)
		close(acquired)
		p.Release(tok2)
	}()

	select {
	case <-acquired:
		t.Fatal("second Acquire should have blocked while pool was exhausted")
	case <-time.After(50 * time.Millisecond):
	}

	p.Release(tok1)

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Acquire never unblocked after Release")
	}
}

func TestPoolRejectsInvalidSize(t *testing.T) {
	require := require.New(t)
	_, err := NewPool(newStatevectorBackend, 0, Config{})
	require.Error(err)
}

func TestPoolSupportsConcurrentAcquireRelease(t *testing.T) {
	require := require.New(t)
	p, err := NewPool(newStatevectorBackend, 3, Config{})
	require.NoError(err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, tok := p.Acquire()
			assert.NotNil(t, b)
			p.Release(tok)
		}()
	}
	wg.Wait()
}
