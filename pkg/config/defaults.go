package config

import "time"

// DefaultServerConfig returns the built-in server defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		HTTPPort:          "8080",
		ShutdownTimeout:   5 * time.Second,
		AutomateRateLimit: 0,
		AutomateRateBurst: 1,
	}
}

// DefaultUpstreamConfig returns the built-in upstream defaults.
func DefaultUpstreamConfig() *UpstreamConfig {
	return &UpstreamConfig{
		BaseURL:               "http://localhost:8000",
		GeneratePath:          "/generate-contract",
		ResponseHeaderTimeout: 2 * time.Minute,
	}
}

// DefaultRelayConfig returns the built-in relay defaults.
// A ContractManager completion frame carries source, ABI and bytecode on a
// single line, so the line cap is generous.
func DefaultRelayConfig() *RelayConfig {
	return &RelayConfig{
		ReadBufferBytes: 4 * 1024,
		MaxLineBytes:    8 * 1024 * 1024,
	}
}

// DefaultAuthConfig returns the built-in auth defaults.
func DefaultAuthConfig() *AuthConfig {
	return &AuthConfig{
		SecretEnv: "AUTH_SECRET",
	}
}
