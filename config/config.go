package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is read once at startup and never mutated afterwards. Components
// receive it (or the fields they need) through their constructors.
type Config struct {
	DebugMode bool

	GRPCPort    int
	MetricsPort int

	// Providers the rpc layer accepts in requests.
	AvailableProviders []string

	// Max number of depth updates buffered while a book waits for its
	// snapshot. Overflow forces a resync instead of unbounded growth.
	PendingUpdatesLimit int

	// Fanout sink: "redis", "kafka" or empty for none.
	PublisherKind string
	RedisURL      string
	KafkaBrokers  []string
	KafkaTopic    string

	// Provider REST endpoints and credentials.
	BitstampAPIURL    string
	CurrencycomAPIURL string
	KucoinAPIKey      string
	KucoinSecretKey   string
	KucoinPassphrase  string
}

func Load() *Config {
	return &Config{
		DebugMode:           os.Getenv("DEBUG") == "true",
		GRPCPort:            envInt("GRPC_PORT", 50051),
		MetricsPort:         envInt("METRICS_PORT", 8080),
		AvailableProviders:  envList("AVAILABLE_PROVIDERS", "ascendex,bitstamp,currencycom,gopax,kucoin"),
		PendingUpdatesLimit: envInt("PENDING_UPDATES_LIMIT", 1000),
		PublisherKind:       os.Getenv("PUBLISHER"),
		RedisURL:            os.Getenv("REDIS_URL"),
		KafkaBrokers:        envList("KAFKA_BROKERS", ""),
		KafkaTopic:          envDefault("KAFKA_TOPIC", "bookbridge.best-of-book"),
		BitstampAPIURL:      envDefault("BITSTAMP_API_URL", "https://www.bitstamp.net"),
		CurrencycomAPIURL:   envDefault("CURRENCYCOM_API_URL", "https://api-adapter.backend.currency.com"),
		KucoinAPIKey:        os.Getenv("KUCOIN_API_KEY"),
		KucoinSecretKey:     os.Getenv("KUCOIN_SECRET_KEY"),
		KucoinPassphrase:    os.Getenv("KUCOIN_PASSPHRASE"),
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envList(key, fallback string) []string {
	raw := envDefault(key, fallback)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
