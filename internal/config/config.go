// Package config loads the run options recognized from an optional
// JSONC file, to be layered under CLI flag overrides by the caller.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// Values holds the three options this parser recognizes. Zero means "not set
// by this source"; callers layer Values from multiple sources (defaults,
// file, CLI flags) with later sources winning on a per-field basis.
type Values struct {
	NumberOfThreads      int `json:"number_of_threads,omitempty"`
	ReadsInputBufferSize int `json:"reads_input_buffer_size,omitempty"`
	TraceLevel           int `json:"trace_level,omitempty"`
}

// Defaults returns the built-in fallback values, overridden by anything a
// config file or CLI flag sets.
func Defaults() Values {
	return Values{
		NumberOfThreads:      4,
		ReadsInputBufferSize: 1 << 20,
		TraceLevel:           0,
	}
}

// Load reads path as JSONC (comments and trailing commas allowed) via
// hujson, standardizes it to plain JSON, and unmarshals it into a Values. A
// missing path is an error; callers that want an optional config file
// should use LoadOptional.
func Load(path string) (Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Values{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Values{}, fmt.Errorf("config: %s is not valid JSONC: %w", path, err)
	}
	var v Values
	if err := json.Unmarshal(standardized, &v); err != nil {
		return Values{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return v, nil
}

// LoadOptional behaves like Load, but returns a zero Values (not an error)
// when path doesn't exist.
func LoadOptional(path string) (Values, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Values{}, nil
		}
		return Values{}, err
	}
	return Load(path)
}

// Merge layers overlay on top of base: any non-zero field in overlay wins.
func Merge(base, overlay Values) Values {
	if overlay.NumberOfThreads != 0 {
		base.NumberOfThreads = overlay.NumberOfThreads
	}
	if overlay.ReadsInputBufferSize != 0 {
		base.ReadsInputBufferSize = overlay.ReadsInputBufferSize
	}
	if overlay.TraceLevel != 0 {
		base.TraceLevel = overlay.TraceLevel
	}
	return base
}
