package config

import "sync"

// Holder gives concurrent readers the current config while Watch swaps in
// reloaded versions.
type Holder struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewHolder returns a Holder seeded with cfg.
func NewHolder(cfg *Config) *Holder {
	return &Holder{cfg: cfg}
}

// Get returns the current config. Callers must not mutate it.
func (h *Holder) Get() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg
}

// Set replaces the current config.
func (h *Holder) Set(cfg *Config) {
	h.mu.Lock()
	h.cfg = cfg
	h.mu.Unlock()
}
