package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolRunsAllJobs(t *testing.T) {
	p := Start(4)

	var n atomic.Uint64
	for range 100 {
		p.Do(func() { n.Add(1) })
	}
	p.Wait(true)

	assert.EqualValues(t, 100, n.Load())
}

func TestPoolIntermediateWait(t *testing.T) {
	p := Start(2)

	var n atomic.Uint64
	for range 10 {
		p.Do(func() { n.Add(1) })
	}
	p.Wait(false)
	assert.EqualValues(t, 10, n.Load())

	// The pool stays usable after a non-closing wait.
	for range 5 {
		p.Do(func() { n.Add(1) })
	}
	p.Wait(true)
	assert.EqualValues(t, 15, n.Load())
}

func TestPoolDefaultWorkerCount(t *testing.T) {
	p := Start(0)

	var n atomic.Uint64
	p.Do(func() { n.Add(1) })
	p.Wait(true)

	assert.EqualValues(t, 1, n.Load())
}

func TestPoolCloseIdempotent(t *testing.T) {
	p := Start(1)
	p.Close()
	assert.NotPanics(t, p.Close)
	p.Wait(true)
}
