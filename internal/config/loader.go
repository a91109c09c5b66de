package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the environment variables this process reads.
const envPrefix = "MINDMIRROR_"

// Load loads configuration with the precedence (highest first):
//
//  1. Environment variables (MINDMIRROR_QDRANT_HOST, ...)
//  2. YAML config file, if configPath is non-empty and the file exists
//  3. Hardcoded defaults
//
// Environment variables map onto config keys by stripping the prefix,
// lowercasing, and replacing the first underscore with a dot:
//
//	MINDMIRROR_QDRANT_HOST          -> qdrant.host
//	MINDMIRROR_QDRANT_API_KEY       -> qdrant.api_key
//	MINDMIRROR_EMBEDDING_DIMENSIONS -> embedding.dimensions
//	MINDMIRROR_RETRIEVAL_DEFAULT_LIMIT -> retrieval.default_limit
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case os.IsNotExist(err):
			// Missing file is fine; defaults plus env apply.
		case err != nil:
			return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
		default:
			if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// envKeyTransform maps MINDMIRROR_QDRANT_API_KEY to qdrant.api_key. Only
// the first underscore becomes a section separator; section names are
// single words, field names may contain underscores.
func envKeyTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	return strings.Replace(key, "_", ".", 1)
}
