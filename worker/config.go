package worker

import "time"

// Config holds the worker service settings.
type Config struct {
	// Node is the base URL of the ledger node API.
	Node string
	// KeyFile holds the enclave signing key.
	KeyFile string
	// PollInterval is the minimum time between two polls of the node.
	PollInterval time.Duration
	// PollBurst is the number of polls allowed back to back.
	PollBurst int
	// SeenCacheSize bounds the set of requests remembered as serviced.
	SeenCacheSize int
}

// Defaults contains the default settings of the worker.
var Defaults = Config{
	Node:          "http://127.0.0.1:8645",
	KeyFile:       "enclave.key",
	PollInterval:  2 * time.Second,
	PollBurst:     1,
	SeenCacheSize: 1024,
}
