package metrics

// Config contains the configuration for the metric collection.
type Config struct {
	Enabled bool   `toml:",omitempty"`
	Path    string `toml:",omitempty"`
}

// DefaultConfig serves the metrics of the node on its API.
var DefaultConfig = Config{
	Enabled: true,
	Path:    "/metrics",
}
