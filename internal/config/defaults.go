package config

import "github.com/spf13/viper"

// DefaultEndpoint is the network label reported when no config overrides it
const DefaultEndpoint = "wss://s.altnet.rippletest.net:51233"

// setDefaults sets every default value
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.ip", "127.0.0.1")
	v.SetDefault("server.poll_interval", "4s")
	v.SetDefault("server.summary_cache_size", 128)

	v.SetDefault("network.endpoint", DefaultEndpoint)

	v.SetDefault("submit.latency_min_ms", 400)
	v.SetDefault("submit.latency_max_ms", 800)

	v.SetDefault("seed_demo", true)
}
