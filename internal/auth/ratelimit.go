package auth

import (
	"sync"
	"time"
)

// LoginThrottle limits failed token requests per client IP and username.
// Records expire lazily; there is no background goroutine to stop.
type LoginThrottle struct {
	mu       sync.Mutex
	attempts map[string]*attemptRecord
	cfg      ThrottleConfig
	now      func() time.Time
}

type attemptRecord struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// ThrottleConfig contains configuration for the login throttle.
type ThrottleConfig struct {
	MaxAttempts     int           // Failures allowed inside Window
	Window          time.Duration // Time window for counting failures
	LockoutDuration time.Duration // How long to refuse after MaxAttempts
}

// DefaultThrottleConfig returns the limits used by the API.
func DefaultThrottleConfig() ThrottleConfig {
	return ThrottleConfig{
		MaxAttempts:     5,
		Window:          15 * time.Minute,
		LockoutDuration: 15 * time.Minute,
	}
}

func NewLoginThrottle(cfg ThrottleConfig) *LoginThrottle {
	def := DefaultThrottleConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	return &LoginThrottle{
		attempts: make(map[string]*attemptRecord),
		cfg:      cfg,
		now:      time.Now,
	}
}

// Allow reports whether another attempt is permitted and, if not, how long
// the caller should wait.
func (t *LoginThrottle) Allow(ip, username string) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.expire(now)

	record, ok := t.attempts[ip+":"+username]
	if !ok {
		return true, 0
	}
	if now.Before(record.lockedUntil) {
		return false, record.lockedUntil.Sub(now)
	}
	return true, 0
}

// RecordFailure counts a failed attempt and reports whether it triggered a
// lockout.
func (t *LoginThrottle) RecordFailure(ip, username string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	key := ip + ":" + username
	record, ok := t.attempts[key]
	if !ok || now.Sub(record.firstAttempt) > t.cfg.Window {
		record = &attemptRecord{firstAttempt: now}
		t.attempts[key] = record
	}

	record.count++
	if record.count >= t.cfg.MaxAttempts {
		record.lockedUntil = now.Add(t.cfg.LockoutDuration)
		return true
	}
	return false
}

// RecordSuccess forgets earlier failures.
func (t *LoginThrottle) RecordSuccess(ip, username string) {
	t.mu.Lock()
	delete(t.attempts, ip+":"+username)
	t.mu.Unlock()
}

// expire drops records whose window and lockout have both passed.
// Callers hold t.mu.
func (t *LoginThrottle) expire(now time.Time) {
	for key, record := range t.attempts {
		if now.Sub(record.firstAttempt) > t.cfg.Window && !now.Before(record.lockedUntil) {
			delete(t.attempts, key)
		}
	}
}
