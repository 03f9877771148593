package auth

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// TimingConfig controls the artificial delay applied to failed logins so
// that "email unknown" and "wrong password" take about the same time.
type TimingConfig struct {
	BaseDelayMs   int
	RandomDelayMs int
}

type TimingDelay struct {
	config TimingConfig
}

func NewTimingDelay(config TimingConfig) *TimingDelay {
	return &TimingDelay{config: config}
}

// WaitFrom sleeps until at least base+random milliseconds have elapsed since
// start. Successful logins are never delayed.
func (td *TimingDelay) WaitFrom(start time.Time, success bool) {
	if success {
		return
	}

	target := time.Duration(td.config.BaseDelayMs) * time.Millisecond
	if td.config.RandomDelayMs > 0 {
		target += time.Duration(cryptoRandIntn(td.config.RandomDelayMs)) * time.Millisecond
	}

	if elapsed := time.Since(start); elapsed < target {
		time.Sleep(target - elapsed)
	}
}

// cryptoRandIntn returns a number in [0, max) using crypto/rand.
func cryptoRandIntn(max int) int {
	if max <= 0 {
		return 0
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}

	return int(binary.BigEndian.Uint64(buf[:]) % uint64(max))
}
