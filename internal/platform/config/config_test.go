package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing addr", func(c *Config) { c.Server.Addr = "" }},
		{"missing signing key", func(c *Config) { c.Auth.JWTSigningKey = "" }},
		{"bad weights", func(c *Config) { c.Engine.Weights.Blood = 0.9 }},
		{"zero epsilon", func(c *Config) { c.Privacy.Epsilon = 0 }},
		{"enabled budget without limit", func(c *Config) { c.Budget.Enabled = true; c.Budget.Limit = 0 }},
		{"enabled budget without window", func(c *Config) { c.Budget.Enabled = true; c.Budget.Window = 0 }},
		{"zero topN", func(c *Config) { c.Matching.DefaultTopN = 0 }},
		{"zero deadline", func(c *Config) { c.Matching.Deadline = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
