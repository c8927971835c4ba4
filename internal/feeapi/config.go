package feeapi

import (
	"time"

	"github.com/tos-network/feecycle/metrics"
)

// Config holds the HTTP API settings.
type Config struct {
	Host string
	Port int
	// CorsAllowedOrigins lists the origins allowed for cross-origin requests.
	CorsAllowedOrigins []string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	// MaxBodySize bounds the size of a submitted instruction.
	MaxBodySize int64
	// Metrics controls the Prometheus endpoint.
	Metrics metrics.Config
}

// Defaults contains the default API settings.
var Defaults = Config{
	Host:               "127.0.0.1",
	Port:               8645,
	CorsAllowedOrigins: []string{"*"},
	ReadTimeout:        30 * time.Second,
	WriteTimeout:       30 * time.Second,
	MaxBodySize:        64 * 1024,
	Metrics:            metrics.DefaultConfig,
}
