package router

import (
	"fmt"
	"strings"

	"github.com/akeren/go-waitlist/internal/log"
	"github.com/caarlos0/env/v11"
)

// HTTPSettings holds the listener and middleware knobs read from the environment.
type HTTPSettings struct {
	Port           string   `env:"APP_PORT" envDefault:"8080"`
	AppEnv         string   `env:"APP_ENV"`
	GinMode        string   `env:"GIN_MODE"`
	TrustedProxies string   `env:"TRUSTED_PROXIES"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGIN" envSeparator:","`
	MaxBodyBytes   int64    `env:"MAX_REQUEST_BODY_BYTES" envDefault:"1048576"`
	MetricsEnabled bool     `env:"METRICS_ENABLED" envDefault:"true"`

	// HSTSEnabled defaults to on in production when unset.
	HSTSEnabled           *bool `env:"HSTS_ENABLED"`
	HSTSMaxAge            int64 `env:"HSTS_MAX_AGE" envDefault:"31536000"`
	HSTSIncludeSubdomains bool  `env:"HSTS_INCLUDE_SUBDOMAINS" envDefault:"true"`
}

func defaultHTTPSettings() HTTPSettings {
	return HTTPSettings{
		Port:                  "8080",
		MaxBodyBytes:          1 << 20,
		MetricsEnabled:        true,
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
	}
}

// loadHTTPSettings never fails: a malformed variable is logged and the defaults are used.
func loadHTTPSettings(logger *log.Logger) HTTPSettings {
	settings, err := env.ParseAs[HTTPSettings]()
	if err != nil {
		logger.Warn("Invalid HTTP settings in environment, using defaults", "error", err)
		return defaultHTTPSettings()
	}

	settings.Port = strings.TrimSpace(settings.Port)
	if settings.Port == "" {
		settings.Port = "8080"
	}
	if settings.MaxBodyBytes <= 0 {
		settings.MaxBodyBytes = 1 << 20
	}
	if settings.HSTSMaxAge <= 0 {
		settings.HSTSMaxAge = 31536000
	}

	origins := settings.AllowedOrigins[:0]
	for _, o := range settings.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	settings.AllowedOrigins = origins

	return settings
}

func (s HTTPSettings) hstsEnabled() bool {
	if s.HSTSEnabled != nil {
		return *s.HSTSEnabled
	}
	appEnv := strings.ToLower(strings.TrimSpace(s.AppEnv))
	return appEnv == "production" || appEnv == "prod"
}

func (s HTTPSettings) hstsValue() string {
	value := fmt.Sprintf("max-age=%d", s.HSTSMaxAge)
	if s.HSTSIncludeSubdomains {
		value += "; includeSubDomains"
	}
	return value
}

func (s HTTPSettings) originAllowed(origin string) bool {
	for _, allowed := range s.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// parseTrustedProxies returns nil to make ClientIP() ignore forwarding headers.
func parseTrustedProxies(v string) []string {
	s := strings.TrimSpace(v)
	if s == "" {
		return nil
	}
	if s == "*" {
		return []string{"0.0.0.0/0", "::/0"}
	}
	parts := strings.Split(s, ",")
	proxies := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			proxies = append(proxies, p)
		}
	}
	if len(proxies) == 0 {
		return nil
	}
	return proxies
}
