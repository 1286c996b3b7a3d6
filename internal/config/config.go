package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Storage   StorageConfig
	Embedding EmbeddingConfig
	Auth      AuthConfig
	Cache     CacheConfig
}

type StorageConfig struct {
	URL      string // base URL of the asset storage service
	Username string
	Password string
}

type EmbeddingConfig struct {
	URL   string // base URL of the embedding inference router
	Token string // bearer credential for the embedding backends
	Model string // model identifier, empty selects the default CLIP variant
}

type AuthConfig struct {
	EvalToken  string // credential for the evaluation endpoint
	AdminToken string // credential for reload/probe endpoints
}

type CacheConfig struct {
	Groups        []string // explicit reference group names; empty means discover
	MaxSamples    int      // max images embedded per group (default 25)
	EmbedWorkers  int      // embedding worker pool size (default 2)
	MaxPhotoEmbed int      // max submission photos embedded per evaluation (default 5)
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envList reads a comma-separated environment variable into a slice,
// trimming whitespace and dropping empty entries.
func envList(key string) []string {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func Load() *Config {
	return &Config{
		Storage: StorageConfig{
			URL:      os.Getenv("STORAGE_URL"),
			Username: os.Getenv("STORAGE_USERNAME"),
			Password: os.Getenv("STORAGE_PASSWORD"),
		},
		Embedding: EmbeddingConfig{
			URL:   os.Getenv("EMBEDDING_URL"),
			Token: os.Getenv("EMBEDDING_TOKEN"),
			Model: os.Getenv("EMBEDDING_MODEL"),
		},
		Auth: AuthConfig{
			EvalToken:  os.Getenv("EVAL_TOKEN"),
			AdminToken: os.Getenv("ADMIN_TOKEN"),
		},
		Cache: CacheConfig{
			Groups:        envList("REFERENCE_GROUPS"),
			MaxSamples:    envInt("MAX_SAMPLES_PER_GROUP", 25),
			EmbedWorkers:  envInt("EMBED_WORKERS", 2),
			MaxPhotoEmbed: envInt("MAX_PHOTO_EMBED", 5),
		},
	}
}
