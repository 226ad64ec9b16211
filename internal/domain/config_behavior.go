package domain

import (
	"os"
	"time"
)

// DefaultEndpoint builds the configured endpoint. The password is read from
// the environment variable named by PasswordEnv, when set.
func (c *Config) DefaultEndpoint() Endpoint {
	ep := Endpoint{
		URL:        c.Endpoint.URL,
		Repository: c.Endpoint.Repository,
		Credentials: Credentials{
			Username: c.Endpoint.Username,
		},
	}
	if ep.URL == "" {
		ep.URL = DefaultGraphDBURL
	}
	if ep.Repository == "" {
		ep.Repository = DefaultRepository
	}
	envName := c.Endpoint.PasswordEnv
	if envName == "" {
		envName = DefaultPasswordEnv
	}
	if ep.Credentials.Username != "" {
		ep.Credentials.Password = os.Getenv(envName)
	}
	return ep
}

// RequestTimeout returns the advisory transport timeout.
func (c *Config) RequestTimeout() time.Duration {
	if c.Proxy.TimeoutSeconds <= 0 {
		return DefaultRequestTimeout
	}
	return time.Duration(c.Proxy.TimeoutSeconds) * time.Second
}

// ServerTimeout returns the per-request timeout for the proxy service.
func (c *Config) ServerTimeout() time.Duration {
	if c.Server.TimeoutSeconds <= 0 {
		return DefaultRequestTimeout
	}
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}

// PageSize returns the configured page size, or the default.
func (c *Config) PageSize() int {
	if c.Query.PageSize <= 0 {
		return DefaultPageSize
	}
	return c.Query.PageSize
}

// ResponseFormat returns the configured response format, or JSON.
func (c *Config) ResponseFormat() ResponseFormat {
	if c.Query.DefaultFormat == "" {
		return FormatJSON
	}
	return ResponseFormat(c.Query.DefaultFormat)
}
