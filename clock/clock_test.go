package clock

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingTicker struct {
	count int32
}

func (c *countingTicker) Tick() {
	atomic.AddInt32(&c.count, 1)
}

func TestFixedClockAdvance(t *testing.T) {
	f := NewFixed(time.Unix(100, 0))
	assert.Equal(t, int64(100), f.Now().Unix())
	f.Advance(5 * time.Second)
	assert.Equal(t, int64(105), f.Now().Unix())
}

func TestMetronomeDrivesRegisteredTickers(t *testing.T) {
	m := NewMetronome(5 * time.Millisecond)
	ticker := &countingTicker{}
	m.Register(ticker)

	go m.Run()
	time.Sleep(30 * time.Millisecond)
	m.Stop()

	assert.True(t, atomic.LoadInt32(&ticker.count) > 0)
}
