package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"oomguard/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSampler is a deterministic stand-in for the OS memory sensor.
type fakeSampler struct {
	mu       sync.Mutex
	snapshot model.MemorySnapshot
	err      error
}

func (f *fakeSampler) Sample() (model.MemorySnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.MemorySnapshot{}, f.err
	}
	return f.snapshot, nil
}

func (f *fakeSampler) set(snapshot model.MemorySnapshot, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshot = snapshot
	f.err = err
}

// tickRecorder collects callback invocations.
type tickRecorder struct {
	mu    sync.Mutex
	ticks []tickRecord
}

type tickRecord struct {
	isAbove   bool
	snapshot  model.MemorySnapshot
	threshold float64
}

func (r *tickRecorder) callback(isAbove bool, snapshot model.MemorySnapshot, threshold float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = append(r.ticks, tickRecord{isAbove, snapshot, threshold})
}

func (r *tickRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ticks)
}

func (r *tickRecorder) last() tickRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks[len(r.ticks)-1]
}

func snapshotOf(total, used, free int64) model.MemorySnapshot {
	return model.MemorySnapshot{
		TotalBytes: total,
		UsedBytes:  used,
		FreeBytes:  free,
		CapturedAt: time.Now(),
	}
}

func TestZeroRefreshIntervalNeverTicksAutomatically(t *testing.T) {
	recorder := &tickRecorder{}
	sampler := &fakeSampler{snapshot: snapshotOf(100, 99, 1)}
	monitor := NewMonitor(Config{
		UsageThreshold:     0,
		MinMemoryFreeBytes: -1,
		RefreshInterval:    0,
	}, sampler, recorder.callback)

	monitor.Start(context.Background())
	defer monitor.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, recorder.count(), "monitor must not tick on its own with a zero refresh interval")

	// An explicit tick still works in this mode.
	monitor.Tick()
	assert.Equal(t, 1, recorder.count())
}

func TestCallbackFiresOnEveryTickNotOnlyOnTransitions(t *testing.T) {
	recorder := &tickRecorder{}
	sampler := &fakeSampler{snapshot: snapshotOf(100, 99, 1)}
	monitor := NewMonitor(Config{
		UsageThreshold:     0.95,
		MinMemoryFreeBytes: -1,
	}, sampler, recorder.callback)

	monitor.Tick()
	monitor.Tick()
	monitor.Tick()

	require.Equal(t, 3, recorder.count())
	for _, tick := range recorder.ticks {
		assert.True(t, tick.isAbove)
		assert.Equal(t, 0.95, tick.threshold)
	}
}

func TestThresholdFormula(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		used      int64
		free      int64
		threshold float64
		minFree   int64
		want      bool
	}{
		{"usage at threshold", 100, 95, 5, 0.95, -1, true},
		{"usage above threshold", 100, 99, 1, 0.95, -1, true},
		{"usage below threshold", 100, 94, 6, 0.95, -1, false},
		{"zero threshold always above", 100, 0, 100, 0, -1, true},
		{"free below floor", 100, 10, 20, 0.99, 30, true},
		{"free at floor", 100, 10, 20, 0.99, 20, false},
		{"floor disabled", 100, 10, 20, 0.99, -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &tickRecorder{}
			sampler := &fakeSampler{snapshot: snapshotOf(tt.total, tt.used, tt.free)}
			monitor := NewMonitor(Config{
				UsageThreshold:     tt.threshold,
				MinMemoryFreeBytes: tt.minFree,
			}, sampler, recorder.callback)

			monitor.Tick()

			require.Equal(t, 1, recorder.count())
			tick := recorder.last()
			assert.Equal(t, tt.want, tick.isAbove)
			assert.Equal(t, tt.threshold, tick.threshold)
			assert.Equal(t, tt.total, tick.snapshot.TotalBytes)
		})
	}
}

func TestSamplerFailureDegradesToZeroedSnapshot(t *testing.T) {
	recorder := &tickRecorder{}
	sampler := &fakeSampler{err: errors.New("sysinfo unavailable")}
	monitor := NewMonitor(Config{
		UsageThreshold:     0,
		MinMemoryFreeBytes: 1 << 30,
	}, sampler, recorder.callback)

	monitor.Tick()

	require.Equal(t, 1, recorder.count())
	tick := recorder.last()
	assert.False(t, tick.isAbove, "a failed sensor read must never signal pressure")
	assert.Zero(t, tick.snapshot.TotalBytes)
	assert.False(t, tick.snapshot.CapturedAt.IsZero())

	// The failure must not corrupt future ticks.
	sampler.set(snapshotOf(100, 99, 1), nil)
	monitor.Tick()
	require.Equal(t, 2, recorder.count())
	assert.True(t, recorder.last().isAbove)
}

func TestAutomaticTickingFiresAtInterval(t *testing.T) {
	recorder := &tickRecorder{}
	sampler := &fakeSampler{snapshot: snapshotOf(100, 50, 50)}
	monitor := NewMonitor(Config{
		UsageThreshold:     0.95,
		MinMemoryFreeBytes: -1,
		RefreshInterval:    5 * time.Millisecond,
	}, sampler, recorder.callback)

	monitor.Start(context.Background())

	deadline := time.After(time.Second)
	for recorder.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("monitor never ticked")
		case <-time.After(time.Millisecond):
		}
	}

	tick := recorder.last()
	assert.False(t, tick.isAbove)
	assert.Equal(t, 0.95, tick.threshold)

	// Stop halts future ticks without racing an in-flight one.
	monitor.Stop()
	stopped := recorder.count()
	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, stopped, recorder.count())
}

func TestTicksNeverOverlap(t *testing.T) {
	var inFlight, overlaps int32
	sampler := &fakeSampler{snapshot: snapshotOf(100, 99, 1)}
	monitor := NewMonitor(Config{
		UsageThreshold:     0.95,
		MinMemoryFreeBytes: -1,
		RefreshInterval:    time.Millisecond,
	}, sampler, func(bool, model.MemorySnapshot, float64) {
		if atomic.AddInt32(&inFlight, 1) > 1 {
			atomic.AddInt32(&overlaps, 1)
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
	})

	// Manual ticks race the ticker goroutine; the callback still runs one
	// tick at a time.
	monitor.Start(context.Background())
	defer monitor.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				monitor.Tick()
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&overlaps), "concurrent ticks must be serialized")
}

func TestConcurrentStartArmsSingleTicker(t *testing.T) {
	recorder := &tickRecorder{}
	sampler := &fakeSampler{snapshot: snapshotOf(100, 50, 50)}
	monitor := NewMonitor(Config{
		UsageThreshold:     0.95,
		MinMemoryFreeBytes: -1,
		RefreshInterval:    5 * time.Millisecond,
	}, sampler, recorder.callback)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			monitor.Start(context.Background())
		}()
	}
	wg.Wait()

	deadline := time.After(time.Second)
	for recorder.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("monitor never ticked")
		case <-time.After(time.Millisecond):
		}
	}

	// One Stop halts everything the racing Starts armed.
	monitor.Stop()
	stopped := recorder.count()
	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, stopped, recorder.count())
}

func TestGetMemorySnapshotReturnsLatestReading(t *testing.T) {
	sampler := &fakeSampler{snapshot: snapshotOf(200, 120, 80)}
	monitor := NewMonitor(Config{UsageThreshold: 0.5, MinMemoryFreeBytes: -1}, sampler, nil)

	snapshot := monitor.GetMemorySnapshot()
	assert.Equal(t, int64(200), snapshot.TotalBytes)
	assert.Equal(t, int64(120), snapshot.UsedBytes)
	assert.Equal(t, int64(80), snapshot.FreeBytes)

	sampler.set(model.MemorySnapshot{}, errors.New("sysinfo unavailable"))
	snapshot = monitor.GetMemorySnapshot()
	assert.Zero(t, snapshot.TotalBytes)
	assert.False(t, snapshot.CapturedAt.IsZero())
}
