package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"structura/backend/global"
	"structura/backend/initialize"
	"structura/backend/server"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "Path to config file")
		host       = flag.String("host", "", "Override HTTP host")
		port       = flag.Int("port", 0, "Override HTTP port")
	)
	flag.Parse()

	app, err := initialize.Build(*configPath)
	if err != nil {
		global.Logger.Fatal().Err(err).Msg("startup failed")
	}
	defer app.Watcher.Stop()

	h, p := app.Cfg.HTTP.Host, app.Cfg.HTTP.Port
	if *host != "" {
		h = *host
	}
	if *port != 0 {
		p = *port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	global.Logger.Info().Str("host", h).Int("port", p).Msg("http server listening")
	if err := server.StartHTTPServer(ctx, h, p, app.Router); err != nil {
		global.Logger.Fatal().Err(err).Msg("http server stopped")
	}
}
