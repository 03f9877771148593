package auth_test

import (
	"testing"
	"time"

	"github.com/ajeetyadav200/sarkari-job-backend/internal/auth"
	"github.com/stretchr/testify/assert"
)

func TestTimingDelay_WaitFrom_OnFailure(t *testing.T) {
	timing := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   100,
		RandomDelayMs: 50,
	})

	start := time.Now()
	timing.WaitFrom(start, false)

	elapsed := time.Since(start)
	// At least the base; below base + max random plus scheduler slack
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	assert.Less(t, elapsed, 250*time.Millisecond)
}

func TestTimingDelay_WaitFrom_OnSuccess_NoDelay(t *testing.T) {
	timing := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   100,
		RandomDelayMs: 50,
	})

	start := time.Now()
	timing.WaitFrom(start, true)

	assert.Less(t, time.Since(start), 10*time.Millisecond)
}

func TestTimingDelay_WaitFrom_CountsElapsedWork(t *testing.T) {
	timing := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs: 50,
	})

	// Work that already took longer than the target is not padded further.
	start := time.Now().Add(-200 * time.Millisecond)
	before := time.Now()
	timing.WaitFrom(start, false)

	assert.Less(t, time.Since(before), 10*time.Millisecond)
}
