package config

// Auth maps bearer tokens to roles, e.g. AUTH_TOKENS="s3cret:admin,t0ken:member".
// An empty map disables authorization.
type Auth struct {
	Tokens map[string]string `env:"AUTH_TOKENS" envSeparator:"," envKeyValSeparator:":"`
}
