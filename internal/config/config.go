package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the front end process configuration. Values are resolved from
// defaults, then the YAML file, then the environment; command line flags are
// applied last by the caller.
type Config struct {
	Server     Server     `yaml:"server"`
	API        API        `yaml:"api"`
	Proxy      Proxy      `yaml:"proxy"`
	Log        Log        `yaml:"log"`
	Tracing    Tracing    `yaml:"tracing"`
	Theme      Theme      `yaml:"theme"`
	Submission Submission `yaml:"submission"`
	Events     Events     `yaml:"events"`
}

type Server struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// API points the client at the loan backend. Prefix is prepended to every
// endpoint path; it is empty when talking to the backend directly and "/api"
// when going through a front end proxy.
type API struct {
	BaseURL      string            `yaml:"base_url"`
	Prefix       string            `yaml:"prefix"`
	Timeout      time.Duration     `yaml:"timeout"`
	ResultFields map[string]string `yaml:"result_fields"`
}

type Proxy struct {
	Enabled  bool   `yaml:"enabled"`
	Upstream string `yaml:"upstream"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Tracing struct {
	Enabled        bool   `yaml:"enabled"`
	JaegerEndpoint string `yaml:"jaeger_endpoint"`
}

type Theme struct {
	Name    string `yaml:"name"`
	Variant string `yaml:"variant"`
}

type Submission struct {
	GuardTTL time.Duration `yaml:"guard_ttl"`
}

type Events struct {
	Driver string    `yaml:"driver"`
	SQS    SQSEvents `yaml:"sqs"`
	AMQP   AMQP      `yaml:"amqp"`
}

type SQSEvents struct {
	QueueName   string `yaml:"queue_name"`
	EndpointURL string `yaml:"endpoint_url"`
}

type AMQP struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

// LookupFunc reads an environment variable. os.LookupEnv in production.
type LookupFunc func(key string) (string, bool)

// Default returns the configuration used when nothing else is set. The
// upstream follows API_HOST the same way the backend computes its own URL.
func Default(lookup LookupFunc) Config {
	upstream := UpstreamURL(lookup)
	return Config{
		Server: Server{
			Addr:            ":3000",
			ShutdownTimeout: 10 * time.Second,
		},
		API: API{
			BaseURL: upstream,
			Timeout: 10 * time.Second,
			ResultFields: map[string]string{
				"loan_id": "$.loan_id",
			},
		},
		Proxy: Proxy{
			Enabled:  true,
			Upstream: upstream,
		},
		Log: Log{
			Level:  "info",
			Format: "json",
		},
		Theme: Theme{
			Name:    "alohomora",
			Variant: "light",
		},
		Submission: Submission{
			GuardTTL: 10 * time.Minute,
		},
		Events: Events{
			Driver: "none",
			SQS: SQSEvents{
				QueueName: "alohomora-submissions",
			},
			AMQP: AMQP{
				Exchange: "alohomora.submissions",
			},
		},
	}
}

// UpstreamURL returns http://{API_HOST}:8000 for localhost and port 80
// otherwise. API_HOST defaults to localhost.
func UpstreamURL(lookup LookupFunc) string {
	host := "localhost"
	if v, ok := lookup("API_HOST"); ok && strings.TrimSpace(v) != "" {
		host = strings.TrimSpace(v)
	}
	port := 80
	if host == "localhost" {
		port = 8000
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}

// Load resolves the configuration. A missing file at path is not an error
// when path is empty; an explicit path must exist.
func Load(path string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	cfg := Default(lookup)

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("config: file %s not found: %w", path, err)
			}
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg, lookup)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup LookupFunc) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	set("ALOHOMORA_ADDR", &cfg.Server.Addr)
	set("ALOHOMORA_API_BASE_URL", &cfg.API.BaseURL)
	set("ALOHOMORA_LOG_LEVEL", &cfg.Log.Level)
	set("ENDPOINT_URL", &cfg.Events.SQS.EndpointURL)
	set("SUBMISSION_QUEUE_NAME", &cfg.Events.SQS.QueueName)
	set("AMQP_URL", &cfg.Events.AMQP.URL)

	if v, ok := lookup("JAEGER_ENDPOINT"); ok && strings.TrimSpace(v) != "" {
		cfg.Tracing.Enabled = true
		cfg.Tracing.JaegerEndpoint = strings.TrimSpace(v)
	}
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Server.Addr) == "" {
		problems = append(problems, "server.addr is required")
	}
	if err := checkURL(c.API.BaseURL); err != nil {
		problems = append(problems, "api.base_url "+err.Error())
	}
	if c.API.Prefix != "" && !strings.HasPrefix(c.API.Prefix, "/") {
		problems = append(problems, "api.prefix must start with /")
	}
	if c.API.Timeout <= 0 {
		problems = append(problems, "api.timeout must be positive")
	}
	if c.Proxy.Enabled {
		if err := checkURL(c.Proxy.Upstream); err != nil {
			problems = append(problems, "proxy.upstream "+err.Error())
		}
	}
	if c.Submission.GuardTTL < 0 {
		problems = append(problems, "submission.guard_ttl must not be negative")
	}

	switch strings.ToLower(c.Events.Driver) {
	case "", "none", "log":
	case "sqs":
		if c.Events.SQS.QueueName == "" {
			problems = append(problems, "events.sqs.queue_name is required for the sqs driver")
		}
	case "amqp":
		if c.Events.AMQP.URL == "" {
			problems = append(problems, "events.amqp.url is required for the amqp driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("events.driver %q is not supported", c.Events.Driver))
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func checkURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("is required")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%q is not an absolute URL", raw)
	}
	return nil
}
