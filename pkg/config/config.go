package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"lintang/routeplanner/pkg/util"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultPort        = 5000
	DefaultGeocoderURL = "https://nominatim.openstreetmap.org"
	DefaultRouterURL   = "https://router.project-osrm.org"
	DefaultGatewayURL  = "http://localhost:5000"
	DefaultUserAgent   = "routeplanner/1.0"
)

// Config holds the settings shared by the gateway and the route planner cli.
type Config struct {
	Port     int
	AppEnv   string
	LogLevel string

	GeocoderURL string
	RouterURL   string
	GatewayURL  string
	UserAgent   string

	// UpstreamTimeout bounds every outbound provider call. Zero means no timeout.
	UpstreamTimeout time.Duration

	// CORSAllowedOrigins lists the origins allowed to call the gateway, "*" allows any.
	CORSAllowedOrigins []string
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", DefaultPort)
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("geocoder_url", DefaultGeocoderURL)
	v.SetDefault("router_url", DefaultRouterURL)
	v.SetDefault("gateway_url", DefaultGatewayURL)
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("upstream_timeout", "0s")
	v.SetDefault("cors_allowed_origins", "*")
}

// Load resolves the configuration from defaults, an optional yaml file, the environment
// and finally flags that were explicitly set. Flag names use dashes, keys use underscores.
func Load(path string, flags *pflag.FlagSet) (*Config, *viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			if f.Name == "config" || bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
		})
		if bindErr != nil {
			return nil, nil, fmt.Errorf("bind flags: %w", bindErr)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:            v.GetInt("port"),
		AppEnv:          v.GetString("app_env"),
		LogLevel:        v.GetString("log_level"),
		GeocoderURL:     strings.TrimRight(v.GetString("geocoder_url"), "/"),
		RouterURL:       strings.TrimRight(v.GetString("router_url"), "/"),
		GatewayURL:      strings.TrimRight(v.GetString("gateway_url"), "/"),
		UserAgent:       v.GetString("user_agent"),
		UpstreamTimeout: v.GetDuration("upstream_timeout"),
	}

	// env and flags deliver a comma separated string, a yaml file may deliver a list
	switch origins := v.Get("cors_allowed_origins").(type) {
	case []interface{}:
		for _, o := range origins {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, util.SplitList(fmt.Sprint(o))...)
		}
	case []string:
		for _, o := range origins {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, util.SplitList(o)...)
		}
	default:
		cfg.CORSAllowedOrigins = util.SplitList(v.GetString("cors_allowed_origins"))
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.UpstreamTimeout < 0 {
		return fmt.Errorf("invalid upstream timeout %s", c.UpstreamTimeout)
	}
	for key, raw := range map[string]string{
		"geocoder_url": c.GeocoderURL,
		"router_url":   c.RouterURL,
		"gateway_url":  c.GatewayURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s %q", key, raw)
		}
	}
	if len(c.CORSAllowedOrigins) == 0 {
		return fmt.Errorf("cors_allowed_origins must not be empty")
	}
	return nil
}

// Watch re-reads the log level whenever the config file changes. It is a no-op when no
// config file was loaded.
func Watch(v *viper.Viper, onLevel func(level string)) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}
		onLevel(v.GetString("log_level"))
	})
	v.WatchConfig()
}
