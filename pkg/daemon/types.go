// Package daemon is the client side of the leader daemon API. The daemon
// serves HTTP over a unix socket; machine events stream over a websocket.
package daemon

import (
	"time"

	"github.com/grovetools/leader/pkg/dispatch"
	"github.com/grovetools/leader/pkg/leader"
	"github.com/grovetools/leader/pkg/sequence"
)

// API routes.
const (
	RouteHealth   = "/health"
	RouteStatus   = "/api/status"
	RouteTable    = "/api/table"
	RouteActivate = "/api/activate"
	RouteKey      = "/api/key"
	RouteEnd      = "/api/end"
	RouteReload   = "/api/reload"
	RouteEvents   = "/api/events"
)

// Status describes a running daemon.
type Status struct {
	PID            int               `json:"pid"`
	Version        string            `json:"version"`
	StartedAt      time.Time         `json:"started_at"`
	Uptime         string            `json:"uptime"`
	ConfigPath     string            `json:"config_path"`
	ConfigLoadedAt time.Time         `json:"config_loaded_at"`
	ConfigError    string            `json:"config_error,omitempty"`
	Timeout        time.Duration     `json:"timeout"`
	SettleDelay    time.Duration     `json:"settle_delay"`
	Diagnostics    []string          `json:"diagnostics,omitempty"`
	Notifier       string            `json:"notifier"`
	State          leader.State      `json:"state"`
	History        []dispatch.Record `json:"history"`
}

// Table is the flattened sequence table with its build diagnostics.
type Table struct {
	Entries     []sequence.Entry `json:"entries"`
	Diagnostics []string         `json:"diagnostics,omitempty"`
}

// KeyRequest is the body of POST /api/key. Only the first character of
// Key is used.
type KeyRequest struct {
	Key string `json:"key"`
}

// ReloadResult reports a successful reload.
type ReloadResult struct {
	ConfigPath  string   `json:"config_path"`
	Entries     int      `json:"entries"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
