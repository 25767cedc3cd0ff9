package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	DefaultDockerName = "Docker"
	DefaultDockerURL  = "https://api.follicle-force-3000.com/process-profile-docker"
	DefaultZipName    = "ZIP"
	DefaultZipURL     = "https://api.follicle-force-3000.com/process-profile"
	DefaultRequests   = 500
	DefaultWorkers    = 10
	DefaultMethod     = "POST"
	DefaultLogLevel   = "warn"

	// DefaultPayload is the profile document posted to both endpoints.
	DefaultPayload = `{"name":"John Doe","email":"john@example.com","age":30,"interests":["coding","music","travel"]}`
)

type OutputFormat string

const (
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

// Endpoint is one deployment variant under test.
type Endpoint struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

type Config struct {
	Docker       Endpoint          `mapstructure:"docker"`
	Zip          Endpoint          `mapstructure:"zip"`
	Method       string            `mapstructure:"method"`
	Headers      map[string]string `mapstructure:"headers"`
	Payload      string            `mapstructure:"payload"`
	PayloadFile  string            `mapstructure:"payload_file"`
	Requests     int               `mapstructure:"requests"`
	Workers      int               `mapstructure:"workers"`
	DockerOnly   bool              `mapstructure:"docker_only"`
	ZipOnly      bool              `mapstructure:"zip_only"`
	OutputDir    string            `mapstructure:"output_dir"`
	OutputFormat OutputFormat      `mapstructure:"output_format"`
	JSONOutput   bool              `mapstructure:"json_output"`
	PromTextfile string            `mapstructure:"prom_textfile"`
	LogLevel     string            `mapstructure:"log_level"`
	ConfigFile   string            `mapstructure:"-"`
	Tracing      TracingConfig     `mapstructure:"tracing"`
}

// TracingConfig configures optional OpenTelemetry export.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"`
	Insecure    bool    `mapstructure:"insecure"`
	Propagate   bool    `mapstructure:"propagate"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// Enabled reports whether any tracing behaviour was requested.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != "" || t.Propagate
}

// ShouldPropagate reports whether W3C trace headers are injected into requests.
func (t TracingConfig) ShouldPropagate() bool {
	return t.Propagate
}

// Default returns the configuration used when no flags or file are given.
func Default() *Config {
	return &Config{
		Docker:       Endpoint{Name: DefaultDockerName, URL: DefaultDockerURL},
		Zip:          Endpoint{Name: DefaultZipName, URL: DefaultZipURL},
		Method:       DefaultMethod,
		Headers:      map[string]string{"Content-Type": "application/json"},
		Payload:      DefaultPayload,
		Requests:     DefaultRequests,
		Workers:      DefaultWorkers,
		OutputDir:    ".",
		OutputFormat: OutputFormatJSON,
		LogLevel:     DefaultLogLevel,
		Tracing:      TracingConfig{Protocol: "grpc", SampleRate: 1.0},
	}
}

// TestDocker reports whether the Docker endpoint is part of the run.
func (c Config) TestDocker() bool {
	return !c.ZipOnly
}

// TestZip reports whether the ZIP endpoint is part of the run.
func (c Config) TestZip() bool {
	return !c.DockerOnly
}

// PayloadDocument returns the request payload as raw JSON, reading the payload
// file when one is configured.
func (c Config) PayloadDocument() (json.RawMessage, error) {
	data := []byte(c.Payload)
	if path := strings.TrimSpace(c.PayloadFile); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("payload file: %w", err)
		}
		data = raw
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(data) {
		return nil, errors.New("payload is not valid JSON")
	}
	return json.RawMessage(data), nil
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

// HighWorkerThreshold is the worker count above which Warnings flags the run.
const HighWorkerThreshold = 500

// Warnings reports settings that are valid but worth a second look.
func (c Config) Warnings() []string {
	var warnings []string
	if c.Workers > HighWorkerThreshold {
		warnings = append(warnings, fmt.Sprintf("High worker count configured (%d workers). Ensure you have authorization to test the target system.", c.Workers))
	}
	return warnings
}

func (c Config) Validate() error {
	var issues []string

	if c.Requests < 0 {
		issues = append(issues, "requests must be >= 0")
	}
	if c.Workers < 1 {
		issues = append(issues, "workers must be >= 1")
	}
	if c.DockerOnly && c.ZipOnly {
		issues = append(issues, "docker-only and zip-only are mutually exclusive")
	}
	if c.TestDocker() {
		issues = append(issues, validateEndpoint("docker", c.Docker)...)
	}
	if c.TestZip() {
		issues = append(issues, validateEndpoint("zip", c.Zip)...)
	}
	if strings.TrimSpace(c.Payload) != "" && strings.TrimSpace(c.PayloadFile) != "" {
		issues = append(issues, "payload and payloadFile are mutually exclusive")
	} else if strings.TrimSpace(c.PayloadFile) == "" && strings.TrimSpace(c.Payload) != "" && !json.Valid([]byte(c.Payload)) {
		issues = append(issues, "payload must be valid JSON")
	}

	switch c.OutputFormat {
	case OutputFormatJSON, OutputFormatYAML:
	default:
		issues = append(issues, fmt.Sprintf("output format %q is not supported (use json or yaml)", c.OutputFormat))
	}

	if strings.TrimSpace(c.LogLevel) != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			issues = append(issues, fmt.Sprintf("log level: %v", err))
		}
	}

	issues = append(issues, validateTracingConfig(c.Tracing)...)

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

func validateEndpoint(label string, ep Endpoint) []string {
	var issues []string
	if strings.TrimSpace(ep.Name) == "" {
		issues = append(issues, fmt.Sprintf("%s: name is required", label))
	}
	raw := strings.TrimSpace(ep.URL)
	if raw == "" {
		return append(issues, fmt.Sprintf("%s: url is required", label))
	}
	u, err := url.Parse(raw)
	if err != nil {
		return append(issues, fmt.Sprintf("%s: invalid url: %v", label, err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		issues = append(issues, fmt.Sprintf("%s: url scheme must be http or https, got %q", label, u.Scheme))
	}
	if u.Host == "" {
		issues = append(issues, fmt.Sprintf("%s: url host is required", label))
	}
	return issues
}

func validateTracingConfig(t TracingConfig) []string {
	var issues []string
	switch strings.ToLower(strings.TrimSpace(t.Protocol)) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing: protocol must be 'grpc' or 'http', got %q", t.Protocol))
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		issues = append(issues, fmt.Sprintf("tracing: sample_rate must be between 0.0 and 1.0, got %g", t.SampleRate))
	}
	return issues
}
