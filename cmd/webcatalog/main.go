package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/catalogkit/webcatalog/config"
	"github.com/catalogkit/webcatalog/internal/app"
	"github.com/catalogkit/webcatalog/internal/webserver"
	"github.com/catalogkit/webcatalog/internal/webui"
)

var (
	conffile = flag.String("c", "webcatalog.yml", "config file")
	showver  = flag.Bool("v", false, "print version and exit")
)

const version = "1.0.0"

func main() {
	flag.Parse()
	if *showver {
		fmt.Println("webcatalog", version)
		return
	}

	_ = godotenv.Load()
	cfg := config.LoadConfig(*conffile)
	cfg.InitDirs()

	a := app.NewApplication(cfg)
	a.Init(cfg)
	defer a.Release()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.StartBackgroundJobs(ctx)

	webserver.Init(a)
	webui.Init()

	go func() {
		if err := webserver.Listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Fatal(err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	zap.L().Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := webserver.Shutdown(shutdownCtx); err != nil {
		zap.S().Error(err)
	}
}
