package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RegisterFlags registers all CLI flags to a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "variantbench",
		Short:         "Compare latency and reliability of two deployment variants",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

func configureFlags(flags *pflag.FlagSet) {
	// Load
	flags.IntP("requests", "r", DefaultRequests, "Number of requests to send to each endpoint")
	flags.IntP("workers", "w", DefaultWorkers, "Maximum number of concurrent workers")

	// Targets
	flags.Bool("docker-only", false, "Only test the Docker endpoint")
	flags.Bool("zip-only", false, "Only test the ZIP endpoint")
	flags.String("docker-url", DefaultDockerURL, "URL of the Docker deployment")
	flags.String("zip-url", DefaultZipURL, "URL of the ZIP deployment")
	flags.String("payload", "", "Inline JSON payload (defaults to the built-in test profile)")
	flags.String("payload-file", "", "Path to a file containing the JSON payload")
	flags.StringArray("header", nil, "Additional request header in key=value form")

	// Output
	flags.String("output-dir", ".", "Directory for the summary and detailed result files")
	flags.String("output-format", string(OutputFormatJSON), "Result file format: json or yaml")
	flags.Bool("json-output", false, "Emit the report as JSON on stdout")
	flags.String("prom-textfile", "", "Write Prometheus metrics in textfile format to this path")
	flags.String("log-level", DefaultLogLevel, "Diagnostic log level (debug, info, warn, error)")

	// Tracing
	flags.String("tracing-endpoint", "", "OTLP collector endpoint (e.g. localhost:4317)")
	flags.String("tracing-protocol", "grpc", "OTLP protocol: grpc or http")
	flags.Bool("tracing-insecure", false, "Disable TLS for the OTLP exporter")
	flags.Bool("tracing-propagate", false, "Inject W3C trace context headers into requests")
	flags.Float64("tracing-sample-rate", 1.0, "Fraction of attempts to sample (0.0-1.0)")

	flags.String("config", "", "Path to config file (JSON or YAML)")
}

func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("requests") {
		val, err := fs.GetInt("requests")
		if err != nil {
			return err
		}
		cfg.Requests = val
	}
	if fs.Changed("workers") {
		val, err := fs.GetInt("workers")
		if err != nil {
			return err
		}
		cfg.Workers = val
	}
	if fs.Changed("docker-only") {
		val, err := fs.GetBool("docker-only")
		if err != nil {
			return err
		}
		cfg.DockerOnly = val
	}
	if fs.Changed("zip-only") {
		val, err := fs.GetBool("zip-only")
		if err != nil {
			return err
		}
		cfg.ZipOnly = val
	}
	if fs.Changed("docker-url") {
		val, err := fs.GetString("docker-url")
		if err != nil {
			return err
		}
		cfg.Docker.URL = strings.TrimSpace(val)
	}
	if fs.Changed("zip-url") {
		val, err := fs.GetString("zip-url")
		if err != nil {
			return err
		}
		cfg.Zip.URL = strings.TrimSpace(val)
	}
	if fs.Changed("payload") {
		val, err := fs.GetString("payload")
		if err != nil {
			return err
		}
		cfg.Payload = val
		cfg.PayloadFile = ""
	}
	if fs.Changed("payload-file") {
		val, err := fs.GetString("payload-file")
		if err != nil {
			return err
		}
		cfg.PayloadFile = strings.TrimSpace(val)
		if !fs.Changed("payload") {
			cfg.Payload = ""
		}
	}
	if fs.Changed("output-dir") {
		val, err := fs.GetString("output-dir")
		if err != nil {
			return err
		}
		cfg.OutputDir = strings.TrimSpace(val)
	}
	if fs.Changed("output-format") {
		val, err := fs.GetString("output-format")
		if err != nil {
			return err
		}
		cfg.OutputFormat = OutputFormat(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("json-output") {
		val, err := fs.GetBool("json-output")
		if err != nil {
			return err
		}
		cfg.JSONOutput = val
	}
	if fs.Changed("prom-textfile") {
		val, err := fs.GetString("prom-textfile")
		if err != nil {
			return err
		}
		cfg.PromTextfile = strings.TrimSpace(val)
	}
	if fs.Changed("log-level") {
		val, err := fs.GetString("log-level")
		if err != nil {
			return err
		}
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(val))
	}

	vals, err := fs.GetStringArray("header")
	if err != nil {
		return err
	}
	if len(vals) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		for _, entry := range vals {
			parts := strings.SplitN(entry, "=", 2)
			if len(parts) != 2 {
				return fmt.Errorf("header must be in key=value format: %s", entry)
			}
			key := http.CanonicalHeaderKey(strings.TrimSpace(parts[0]))
			if key == "" {
				return fmt.Errorf("header key cannot be empty")
			}
			cfg.Headers[key] = strings.TrimSpace(parts[1])
		}
	}

	if fs.Changed("tracing-endpoint") {
		val, err := fs.GetString("tracing-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-protocol") {
		val, err := fs.GetString("tracing-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("tracing-insecure") {
		val, err := fs.GetBool("tracing-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("tracing-propagate") {
		val, err := fs.GetBool("tracing-propagate")
		if err != nil {
			return err
		}
		cfg.Tracing.Propagate = val
	}
	if fs.Changed("tracing-sample-rate") {
		val, err := fs.GetFloat64("tracing-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}

	return nil
}
