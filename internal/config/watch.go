package config

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/fsnotify/fsnotify"
)

// Change is one setting that differs between two configs.
type Change struct {
	Key      string // YAML path, e.g. "calculator.max_machines"
	Old, New string
	// Restart is set for settings the running server binds at startup.
	Restart bool
}

// Diff lists the settings that differ between prev and next in config file
// order.
func Diff(prev, next *Config) []Change {
	var out []Change
	add := func(key string, was, now any, restart bool) {
		o, n := fmt.Sprint(was), fmt.Sprint(now)
		if o != n {
			out = append(out, Change{Key: key, Old: o, New: n, Restart: restart})
		}
	}

	add("calculator.default_decimals", prev.Calculator.DefaultDecimals, next.Calculator.DefaultDecimals, false)
	add("calculator.max_machines", prev.Calculator.MaxMachines, next.Calculator.MaxMachines, false)

	ps, ns := prev.Server, next.Server
	add("server.http_port", ps.HTTPPort, ns.HTTPPort, true)
	add("server.grpc_port", ps.GRPCPort, ns.GRPCPort, true)
	add("server.auth.mode", ps.Auth.Mode, ns.Auth.Mode, true)
	add("server.auth.key_env", ps.Auth.KeyEnv, ns.Auth.KeyEnv, true)
	add("server.auth.header", ps.Auth.Header, ns.Auth.Header, true)
	if !slices.Equal(ps.CORSOrigins, ns.CORSOrigins) {
		add("server.cors_origins", ps.CORSOrigins, ns.CORSOrigins, true)
	}
	add("server.live_interval", ps.LiveInterval, ns.LiveInterval, true)

	add("logging.level", prev.Logging.Level, next.Logging.Level, false)
	add("logging.format", prev.Logging.Format, next.Logging.Format, false)
	return out
}

// Watch reloads path whenever it is written and swaps the result into h.
// onChange, when non-nil, runs after the swap with the new config.
//
// A reload that fails to load or validate is logged and dropped, so the
// previous config stays active. A reload that changes nothing is ignored.
// Server settings that need a restart are still stored but logged as a
// warning. Watch runs until ctx is cancelled.
func Watch(ctx context.Context, path string, h *Holder, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch %q: %w", path, err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("config: watch %q: %w", path, err)
	}
	slog.Info("config: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Atomic saves show up as Create after a rename.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			reload(path, h, onChange)
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

func reload(path string, h *Holder, onChange func(*Config)) {
	cfg, err := Load(path)
	if err != nil {
		slog.Error("config: reload failed, keeping previous config", "path", path, "err", err)
		return
	}

	changes := Diff(h.Get(), cfg)
	if len(changes) == 0 {
		slog.Debug("config: file written, nothing changed", "path", path)
		return
	}

	var live []string
	for _, c := range changes {
		if c.Restart {
			slog.Warn("config: setting changed, takes effect after restart",
				"key", c.Key, "old", c.Old, "new", c.New)
			continue
		}
		live = append(live, c.Key)
	}

	h.Set(cfg)
	slog.Info("config: reloaded", "path", path, "changed", live,
		"default_decimals", cfg.Calculator.DefaultDecimals,
		"max_machines", cfg.Calculator.MaxMachines)
	if onChange != nil {
		onChange(cfg)
	}
}
