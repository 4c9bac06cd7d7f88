package app

import (
	"os"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/catalogkit/webcatalog/config"
	"github.com/catalogkit/webcatalog/internal/backend"
	"github.com/catalogkit/webcatalog/internal/session"
)

// Application wires the session store, the backend API client, and the
// background monitor together. All catalog state stays on the backend; the
// application itself carries only the session cookie machinery and the
// latest monitor snapshot.
type Application struct {
	appConfig *config.AppConfig
	bus       EventBus.Bus
	sessions  *session.Manager
	api       *backend.Client
	sched     *cron.Cron

	mu      sync.RWMutex
	monitor MonitorStatus
}

var (
	_ ConfigProvider    = (*Application)(nil)
	_ SessionProvider   = (*Application)(nil)
	_ BackendProvider   = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ WebContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) Sessions() *session.Manager {
	return a.sessions
}

func (a *Application) API() *backend.Client {
	return a.api
}

func (a *Application) Bus() EventBus.Bus {
	return a.bus
}

func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	a.initLogger(cfg)

	a.bus = EventBus.New()
	a.sessions = session.NewManager(cfg.Session, cfg.Web.Secret, a.bus)
	a.api = backend.NewClient(cfg.Backend)
	a.monitor = MonitorStatus{StartedAt: time.Now()}

	a.watchSessionEvents()
}

func (a *Application) initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

// watchSessionEvents turns session transitions into structured log lines.
// Anything else interested in session changes subscribes to the same topics.
func (a *Application) watchSessionEvents() {
	_ = a.bus.Subscribe(session.TopicLogin, func(username string) {
		zap.L().Info("session login", zap.String("username", username))
	})
	_ = a.bus.Subscribe(session.TopicLogout, func(username string) {
		zap.L().Info("session logout", zap.String("username", username))
	})
	_ = a.bus.Subscribe(session.TopicExpired, func(username string) {
		zap.L().Info("session expired", zap.String("username", username))
	})
}

// Release releases application resources.
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	_ = zap.L().Sync()
}
