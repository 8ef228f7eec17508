package bwboot

import (
	"bytes"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// SettingsFileName is the optional JSON settings file read from the working directory.
const SettingsFileName = "appsettings.json"

// Config is the merged, read-only view of the settings file and the process environment.
// Keys are case-insensitive and ":", "__" and "." all separate sections, so
// "Logging:Level", "LOGGING__LEVEL" and "logging.level" name the same value.
type Config struct {
	values map[string]string
}

// BuildConfiguration reads SettingsFileName from dir (the working directory when dir is
// empty) and overlays every process environment variable on top of it. A missing file is
// skipped; a malformed one is a ConfigurationError.
func BuildConfiguration(dir string) (*Config, error) {
	return buildConfiguration(dir, os.Environ())
}

func buildConfiguration(dir string, environ []string) (*Config, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, configErrorWrap(SettingsFileName, err, "resolve working directory")
		}
		dir = wd
	}

	values := map[string]string{}
	if err := readSettingsFile(filepath.Join(dir, SettingsFileName), values); err != nil {
		return nil, err
	}

	for _, kv := range environ {
		key, val, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		values[normalizeKey(key)] = val
	}

	return &Config{values: values}, nil
}

// readSettingsFile decodes the file with json.Number so numbers keep their exact text
// ("2.0" stays "2.0"); viper's own JSON codec would turn them into float64.
func readSettingsFile(path string, into map[string]string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return configErrorWrap(SettingsFileName, err, "read settings file")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	settings := map[string]any{}
	if err := dec.Decode(&settings); err != nil {
		return configErrorWrap(SettingsFileName, err, "parse settings file")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return configErrorf(SettingsFileName, "parse settings file: trailing data after JSON object")
	}

	v := viper.New()
	if err := v.MergeConfigMap(settings); err != nil {
		return configErrorWrap(SettingsFileName, err, "merge settings file")
	}

	flatten("", v.AllSettings(), into)
	return nil
}

func flatten(prefix string, val any, into map[string]string) {
	join := func(k string) string {
		if prefix == "" {
			return normalizeKey(k)
		}
		return prefix + "." + normalizeKey(k)
	}

	switch tv := val.(type) {
	case map[string]any:
		for k, sub := range tv {
			flatten(join(k), sub, into)
		}
	case []any:
		for i, sub := range tv {
			flatten(join(strconv.Itoa(i)), sub, into)
		}
	case json.Number:
		into[prefix] = tv.String()
	default:
		if prefix != "" {
			into[prefix] = cast.ToString(tv)
		}
	}
}

func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "__", ".")
	return strings.ReplaceAll(key, ":", ".")
}

// Get returns the value for key, or the empty string when it is not set.
func (c *Config) Get(key string) string {
	return c.values[normalizeKey(key)]
}

// Lookup returns the value for key and whether it was set by any source.
func (c *Config) Lookup(key string) (string, bool) {
	v, ok := c.values[normalizeKey(key)]
	return v, ok
}

// Required returns the value for key or a ConfigurationError when no source set it.
func (c *Config) Required(key string) (string, error) {
	v, ok := c.Lookup(key)
	if !ok {
		return "", configErrorf(key, "required setting %q is not set", key)
	}
	return v, nil
}

// Keys returns all normalised keys in sorted order.
func (c *Config) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Section returns a copy of every value below prefix, keyed by the remainder of the key.
func (c *Config) Section(prefix string) map[string]string {
	prefix = normalizeKey(prefix) + "."
	out := map[string]string{}
	for k, v := range c.values {
		if rest, ok := strings.CutPrefix(k, prefix); ok {
			out[rest] = v
		}
	}
	return out
}
