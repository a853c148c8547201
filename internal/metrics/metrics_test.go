package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCounter_Concurrent(t *testing.T) {
	var c Counter
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc()
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(50), c.Load())
}

func TestRegistry_SameCounterByName(t *testing.T) {
	r := NewRegistry()
	r.Counter(CheckoutCommitted).Inc()
	r.Counter(CheckoutCommitted).Inc()
	r.Counter(PromoConsumed).Inc()

	snap := r.Snapshot()
	assert.Equal(t, uint64(2), snap.Counters[CheckoutCommitted])
	assert.Equal(t, uint64(1), snap.Counters[PromoConsumed])
	assert.Len(t, snap.Counters, 2)
}

func TestHistogram(t *testing.T) {
	r := NewRegistry()
	h := r.Histogram(CheckoutDuration)
	h.Observe(10 * time.Millisecond)
	h.Observe(30 * time.Millisecond)

	s := r.Snapshot().Histograms[CheckoutDuration]
	assert.Equal(t, uint64(2), s.Count)
	assert.InDelta(t, 20.0, s.MeanMs, 0.001)
	assert.InDelta(t, 30.0, s.MaxMs, 0.001)
}

func TestHistogram_Empty(t *testing.T) {
	var h Histogram
	assert.Equal(t, HistogramSnapshot{}, h.Snapshot())
}

func TestTimer(t *testing.T) {
	timer := StartTimer()
	time.Sleep(time.Millisecond)
	assert.GreaterOrEqual(t, timer.Duration(), time.Millisecond)
}
