package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lintang/routeplanner/pkg/config"
	"lintang/routeplanner/pkg/geocoder"
	"lintang/routeplanner/pkg/logger"
	"lintang/routeplanner/pkg/osrm"
	"lintang/routeplanner/pkg/server/rest"
	"lintang/routeplanner/pkg/server/rest/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

//	@title			routeplanner gateway API
//	@version		1.0
//	@description	geocoding gateway and driving route proxy for the route planner map

//	@contact.name	lintang birda saputra

//	@license.name	GNU Affero General Public License v3.0
//	@license.url	https://www.gnu.org/licenses/gpl-3.0.en.html

// @host		localhost:5000
// @BasePath	/
// @schemes	http
func main() {
	flags := pflag.NewFlagSet("server", pflag.ExitOnError)
	configPath := flags.String("config", "", "optional yaml config file")
	flags.Int("port", config.DefaultPort, "server listen port")
	flags.String("app-env", "development", "development or production")
	flags.String("log-level", "info", "debug, info, warn or error")
	flags.String("geocoder-url", config.DefaultGeocoderURL, "nominatim compatible geocoding provider")
	flags.String("router-url", config.DefaultRouterURL, "osrm compatible routing provider")
	flags.String("user-agent", config.DefaultUserAgent, "user agent sent to the providers")
	flags.Duration("upstream-timeout", 0, "timeout of every provider call, 0 disables it")
	flags.String("cors-allowed-origins", "*", "comma separated allowed origins, * allows any")
	_ = flags.Parse(os.Args[1:])

	if err := run(*configPath, flags); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, flags *pflag.FlagSet) error {
	cfg, v, err := config.Load(configPath, flags)
	if err != nil {
		return err
	}

	log, atom, err := logger.New(cfg.AppEnv, cfg.LogLevel, "gateway")
	if err != nil {
		return err
	}
	defer log.Sync()

	config.Watch(v, func(level string) {
		if err := logger.SetLevel(atom, level); err != nil {
			log.Warn("ignoring log level from config file", zap.Error(err))
			return
		}
		log.Info("log level changed", zap.String("level", level))
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := service.NewGatewayService(
		geocoder.NewNominatim(cfg.GeocoderURL, cfg.UserAgent, cfg.UpstreamTimeout, log.Named("geocoder")),
		osrm.NewClient(cfg.RouterURL, cfg.UpstreamTimeout, log.Named("osrm")),
		log.Named("service"),
	)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           rest.NewRouter(svc, cfg.CORSAllowedOrigins, reg, log.Named("http")),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", zap.String("addr", srv.Addr),
			zap.String("geocoder", cfg.GeocoderURL), zap.String("router", cfg.RouterURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
