package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config

	// mcpMode switches the process to an MCP stdio server instead of HTTP.
	mcpMode   bool
	mcpUserID string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithMCPMode enables MCP stdio mode. userID, when non-empty, is the
// identity used for mutating tools.
func WithMCPMode(userID string) Option {
	return func(a *application) {
		a.mcpMode = true
		a.mcpUserID = userID
	}
}
