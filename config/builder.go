package config

import (
	"fmt"
	"sort"

	"github.com/jpalmerr/typecast"
)

// BuildSource converts the source section into an SDK [typecast.Source].
func BuildSource(sc SourceConfig) (typecast.Source, error) {
	var opts []typecast.SourceOption

	if sc.Method != "" {
		opts = append(opts, typecast.WithMethod(sc.Method))
	}

	if sc.Timeout != 0 {
		opts = append(opts, typecast.WithTimeout(sc.Timeout.Duration()))
	}

	if len(sc.Headers) > 0 {
		opts = append(opts, typecast.WithHeaders(mapToKeyValuePairs(sc.Headers)...))
	}

	extractor, err := buildExtractor(sc)
	if err != nil {
		return typecast.Source{}, err
	}
	if extractor != nil {
		opts = append(opts, typecast.WithExtractor(extractor))
	}

	return typecast.NewSource(sc.URL, opts...)
}

// BuildOptions converts parsed configuration into SDK options for
// [typecast.New]. The terminal section is left to the caller, which owns
// the terminal surface.
func BuildOptions(cfg *Config) ([]typecast.Option, error) {
	src, err := BuildSource(cfg.Source)
	if err != nil {
		return nil, err
	}

	opts := []typecast.Option{
		typecast.WithSource(src),
		typecast.WithPort(cfg.Port),
		typecast.WithPollingInterval(cfg.PollInterval.Duration()),
		typecast.WithPollOnStart(cfg.PollOnStart),
		typecast.WithRevealInterval(cfg.Animation.RevealInterval.Duration()),
		typecast.WithFadeDuration(cfg.Animation.FadeDuration.Duration()),
		typecast.WithFadeTick(cfg.Animation.FadeTick.Duration()),
	}

	if cfg.Title != "" {
		opts = append(opts, typecast.WithTitle(cfg.Title))
	}
	if cfg.Placeholder != nil {
		opts = append(opts, typecast.WithPlaceholder(*cfg.Placeholder))
	}
	if !cfg.OverlayEnabled() {
		opts = append(opts, typecast.WithoutServer())
	}

	return opts, nil
}

// mapToKeyValuePairs converts a map to a sorted slice of key-value pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	// sort keys for deterministic ordering
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}

// buildExtractor converts the source format to a TextExtractor.
// Returns nil for the SDK default ("response" field of a JSON object).
func buildExtractor(sc SourceConfig) (typecast.TextExtractor, error) {
	switch sc.Format {
	case "", FormatJSON:
		if sc.Field == "" || sc.Field == defaultField {
			// nil signals SDK to use DefaultExtractor
			return nil, nil
		}
		return typecast.JSONFieldExtractor(sc.Field), nil
	case FormatText:
		return typecast.PlainTextExtractor, nil
	case FormatRegex:
		return typecast.RegexExtractor(sc.Pattern)
	default:
		return nil, fmt.Errorf("unknown format %q", sc.Format)
	}
}
