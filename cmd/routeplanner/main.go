package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"lintang/routeplanner/pkg/config"
	"lintang/routeplanner/pkg/datastructure"
	"lintang/routeplanner/pkg/gatewayclient"
	"lintang/routeplanner/pkg/logger"
	"lintang/routeplanner/pkg/mapview"
	"lintang/routeplanner/pkg/osrm"
	"lintang/routeplanner/pkg/position"
	"lintang/routeplanner/pkg/workflow"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type options struct {
	from, to string
	here     string
	swap     bool
	geojson  string
}

func main() {
	flags := pflag.NewFlagSet("routeplanner", pflag.ExitOnError)
	opts := options{}
	configPath := flags.String("config", "", "optional yaml config file")
	flags.StringVar(&opts.from, "from", "", "source place name, defaults to the current location")
	flags.StringVar(&opts.to, "to", "", "destination place name")
	flags.StringVar(&opts.here, "here", "", "current location as lat,lon")
	flags.BoolVar(&opts.swap, "swap", false, "swap source and destination after the search")
	flags.StringVar(&opts.geojson, "geojson", "", "write the map view as geojson to this file, - for stdout")
	flags.String("gateway-url", config.DefaultGatewayURL, "geocoding gateway")
	flags.String("router-url", config.DefaultRouterURL, "osrm compatible routing provider")
	flags.Duration("upstream-timeout", 0, "timeout of every request, 0 disables it")
	flags.String("log-level", "info", "debug, info, warn or error")
	_ = flags.Parse(os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, flags, opts); err != nil {
		fmt.Fprintf(os.Stderr, "routeplanner: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, flags *pflag.FlagSet, opts options) error {
	cfg, _, err := config.Load(configPath, flags)
	if err != nil {
		return err
	}

	log, _, err := logger.New(cfg.AppEnv, cfg.LogLevel, "routeplanner")
	if err != nil {
		return err
	}
	defer log.Sync()

	wf := workflow.New(
		gatewayclient.New(cfg.GatewayURL, cfg.UpstreamTimeout),
		osrm.NewClient(cfg.RouterURL, cfg.UpstreamTimeout, log.Named("osrm")),
		log.Named("workflow"),
	)

	spin := &spinner{}
	defer spin.Stop()
	wf.OnChange(func(s workflow.SessionState) {
		if s.Loading {
			spin.Start("resolving route...")
		} else {
			spin.Stop()
		}
	})

	var locator position.Locator = position.Unavailable{Reason: "no --here given"}
	if opts.here != "" {
		here, err := position.ParseLatLon(opts.here)
		if err != nil {
			return err
		}
		locator = position.NewStatic(here)
	}
	if _, err := wf.Locate(ctx, locator); err != nil {
		log.Info("starting without a current location", zap.Error(err))
	}

	if opts.from != "" {
		wf.SetSourceQuery(opts.from)
	}
	wf.SetDestinationQuery(opts.to)

	res, err := wf.Search(ctx)
	if err == nil && opts.swap {
		res, err = wf.Swap(ctx)
	}
	spin.Stop()

	if err := report(os.Stdout, res, err); err != nil {
		return err
	}

	if opts.geojson != "" {
		if err := writeGeoJSON(opts.geojson, res.State); err != nil {
			return err
		}
	}
	return nil
}

func report(w io.Writer, res workflow.Result, err error) error {
	if err != nil {
		return err
	}
	s := res.State

	fmt.Fprintf(w, "From: %s\n", label(s.SourceQuery, s.Source))
	fmt.Fprintf(w, "To:   %s\n", label(s.DestinationQuery, s.Destination))

	switch res.Outcome {
	case workflow.OutcomeResolved:
		fmt.Fprintf(w, "Distance: %.2f km\n", s.Route.Summary.DistanceKm)
		fmt.Fprintf(w, "Duration: %.2f min\n", s.Route.Summary.DurationMin)
		fmt.Fprintf(w, "Straight line: %.2f km\n", datastructure.GreatCircleKm(*s.Source, *s.Destination))
	case workflow.OutcomeNoRoute:
		fmt.Fprintln(w, "No route found")
	case workflow.OutcomeSwapped:
		fmt.Fprintln(w, "Swapped, search again to route")
	}
	return nil
}

func label(query string, c *datastructure.Coordinate) string {
	if c == nil {
		return query
	}
	return fmt.Sprintf("%s (%.5f, %.5f)", query, c.Lat, c.Lon)
}

func writeGeoJSON(path string, s workflow.SessionState) error {
	raw, err := mapview.Render(s).GeoJSON()
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	if path == "-" {
		_, err = os.Stdout.Write(append(raw, '\n'))
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write geojson: %w", err)
	}
	return nil
}
