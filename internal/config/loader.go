package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and the optional config file. Flags
// override file settings, which override built-in defaults.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
	}

	configPath := flagSet.Lookup("config").Value.String()
	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := Default()
	cfg.ConfigFile = configPath

	settings := cfgViper.AllSettings()
	if configPath != "" {
		if err := restorePayload(configPath, settings); err != nil {
			return nil, err
		}
	}
	if err := applyConfigSettings(cfg, settings); err != nil {
		return nil, err
	}
	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.Method = strings.ToUpper(strings.TrimSpace(cfg.Method))
	if cfg.Method == "" {
		cfg.Method = DefaultMethod
	}
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}
	return cfg, nil
}

func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	endpoints := []struct {
		key    string
		target *Endpoint
	}{
		{"docker", &cfg.Docker},
		{"zip", &cfg.Zip},
	}
	for _, ep := range endpoints {
		if raw, ok := lookupSetting(settings, ep.key); ok {
			if err := applyEndpointSettings(ep.target, raw); err != nil {
				return fmt.Errorf("%s: %w", ep.key, err)
			}
		}
	}

	if raw, ok := lookupSetting(settings, "method"); ok {
		val, err := settingString(raw)
		if err != nil {
			return fmt.Errorf("method: %w", err)
		}
		if val != "" {
			cfg.Method = val
		}
	}

	if raw, ok := lookupSetting(settings, "headers"); ok {
		hdrs, err := settingHeaders(raw)
		if err != nil {
			return fmt.Errorf("headers: %w", err)
		}
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		for k, v := range hdrs {
			cfg.Headers[k] = v
		}
	}

	rawPayload, inlinePayload := lookupSetting(settings, "payload")
	if inlinePayload {
		val, err := payloadString(rawPayload)
		if err != nil {
			return fmt.Errorf("payload: %w", err)
		}
		cfg.Payload = val
	}
	if raw, ok := lookupSetting(settings, "payload_file"); ok {
		val, err := settingString(raw)
		if err != nil {
			return fmt.Errorf("payload_file: %w", err)
		}
		cfg.PayloadFile = val
		if !inlinePayload && val != "" {
			cfg.Payload = ""
		}
	}

	ints := []struct {
		key    string
		target *int
	}{
		{"requests", &cfg.Requests},
		{"workers", &cfg.Workers},
	}
	for _, f := range ints {
		if raw, ok := lookupSetting(settings, f.key); ok {
			val, err := settingInt(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", f.key, err)
			}
			*f.target = val
		}
	}

	bools := []struct {
		key    string
		target *bool
	}{
		{"docker_only", &cfg.DockerOnly},
		{"zip_only", &cfg.ZipOnly},
		{"json_output", &cfg.JSONOutput},
	}
	for _, f := range bools {
		if raw, ok := lookupSetting(settings, f.key); ok {
			val, err := settingBool(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", f.key, err)
			}
			*f.target = val
		}
	}

	var format string
	texts := []struct {
		key    string
		target *string
		fold   bool
	}{
		{"output_dir", &cfg.OutputDir, false},
		{"output_format", &format, true},
		{"prom_textfile", &cfg.PromTextfile, false},
		{"log_level", &cfg.LogLevel, true},
	}
	for _, f := range texts {
		if raw, ok := lookupSetting(settings, f.key); ok {
			val, err := settingString(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", f.key, err)
			}
			if f.fold {
				val = strings.ToLower(val)
			}
			*f.target = val
		}
	}
	if format != "" {
		cfg.OutputFormat = OutputFormat(format)
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		if err := applyTracingSettings(&cfg.Tracing, raw); err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
	}
	return nil
}

func applyEndpointSettings(ep *Endpoint, raw interface{}) error {
	section, err := settingSection(raw)
	if err != nil {
		return err
	}
	if v, ok := lookupSetting(section, "name"); ok {
		val, err := settingString(v)
		if err != nil {
			return fmt.Errorf("name: %w", err)
		}
		if val != "" {
			ep.Name = val
		}
	}
	if v, ok := lookupSetting(section, "url"); ok {
		val, err := settingString(v)
		if err != nil {
			return fmt.Errorf("url: %w", err)
		}
		ep.URL = val
	}
	return nil
}

func applyTracingSettings(t *TracingConfig, raw interface{}) error {
	section, err := settingSection(raw)
	if err != nil {
		return err
	}
	for _, f := range []struct {
		key    string
		target *string
	}{
		{"endpoint", &t.Endpoint},
		{"protocol", &t.Protocol},
		{"service_name", &t.ServiceName},
	} {
		if v, ok := lookupSetting(section, f.key); ok {
			val, err := settingString(v)
			if err != nil {
				return fmt.Errorf("%s: %w", f.key, err)
			}
			*f.target = val
		}
	}
	t.Protocol = strings.ToLower(t.Protocol)

	for _, f := range []struct {
		key    string
		target *bool
	}{
		{"insecure", &t.Insecure},
		{"propagate", &t.Propagate},
	} {
		if v, ok := lookupSetting(section, f.key); ok {
			val, err := settingBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", f.key, err)
			}
			*f.target = val
		}
	}

	if v, ok := lookupSetting(section, "sample_rate"); ok {
		val, err := settingFloat(v)
		if err != nil {
			return fmt.Errorf("sample_rate: %w", err)
		}
		t.SampleRate = val
	}
	return nil
}

// restorePayload replaces a structured payload in settings with the value as
// written in the file. Viper lowercases nested map keys, which would change
// the request body.
func restorePayload(path string, settings map[string]interface{}) error {
	current, ok := lookupSetting(settings, "payload")
	if !ok {
		return nil
	}
	switch current.(type) {
	case nil, string:
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var doc map[string]interface{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&doc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		return fmt.Errorf("payload: structured payloads need a JSON or YAML config file; use payload_file instead")
	}
	if err != nil {
		return fmt.Errorf("payload: %w", err)
	}

	delete(settings, "payload")
	if raw, ok := lookupSetting(doc, "payload"); ok {
		settings["payload"] = raw
	}
	return nil
}

// payloadString accepts either a JSON string or a structured document, which
// YAML and JSON config files decode into maps and slices.
func payloadString(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
