package app

import (
	"github.com/robfig/cron/v3"

	"github.com/catalogkit/webcatalog/config"
	"github.com/catalogkit/webcatalog/internal/backend"
	"github.com/catalogkit/webcatalog/internal/session"
)

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SessionProvider provides the browser session store
type SessionProvider interface {
	Sessions() *session.Manager
}

// BackendProvider provides the catalog REST client
type BackendProvider interface {
	API() *backend.Client
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// WebContext is what the web layer needs from the application. Handlers
// should depend on this interface rather than the concrete Application.
type WebContext interface {
	ConfigProvider
	SessionProvider
	BackendProvider

	// Monitor returns the latest background-probe snapshot for the
	// status view.
	Monitor() MonitorStatus
}
