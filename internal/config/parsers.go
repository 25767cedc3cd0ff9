// Package config loads and validates variantbench run settings from flags and
// an optional YAML or JSON config file.
package config

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cast"
)

var keyFolder = strings.NewReplacer("_", "", "-", "")

// normalizeKey folds payload_file, payload-file and payloadFile to one form.
func normalizeKey(key string) string {
	return strings.ToLower(keyFolder.Replace(strings.TrimSpace(key)))
}

// lookupSetting finds key in settings regardless of case or separator style.
func lookupSetting(settings map[string]interface{}, key string) (interface{}, bool) {
	if val, ok := settings[key]; ok {
		return val, true
	}
	want := normalizeKey(key)
	for k, val := range settings {
		if normalizeKey(k) == want {
			return val, true
		}
	}
	return nil, false
}

func settingString(value interface{}) (string, error) {
	s, err := cast.ToStringE(value)
	return strings.TrimSpace(s), err
}

func settingInt(value interface{}) (int, error) {
	if s, ok := value.(string); ok {
		value = strings.TrimSpace(s)
	}
	return cast.ToIntE(value)
}

func settingFloat(value interface{}) (float64, error) {
	if s, ok := value.(string); ok {
		value = strings.TrimSpace(s)
	}
	return cast.ToFloat64E(value)
}

func settingBool(value interface{}) (bool, error) {
	if s, ok := value.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return false, nil
		}
		value = s
	}
	return cast.ToBoolE(value)
}

// settingHeaders decodes a headers section into canonical header names.
func settingHeaders(value interface{}) (map[string]string, error) {
	if value == nil {
		return nil, nil
	}
	raw, err := cast.ToStringMapStringE(value)
	if err != nil {
		return nil, err
	}
	hdrs := make(map[string]string, len(raw))
	for k, v := range raw {
		k = strings.TrimSpace(k)
		if k == "" {
			return nil, fmt.Errorf("header key cannot be empty")
		}
		hdrs[http.CanonicalHeaderKey(k)] = v
	}
	return hdrs, nil
}

// settingSection returns a nested section such as docker, zip or tracing.
func settingSection(value interface{}) (map[string]interface{}, error) {
	if value == nil {
		return map[string]interface{}{}, nil
	}
	if _, ok := value.(string); ok {
		return nil, fmt.Errorf("expected map, got %T", value)
	}
	return cast.ToStringMapE(value)
}
