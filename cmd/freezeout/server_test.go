package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/freezeout/internal/server"
)

func TestServerFlagsOverrideConfig(t *testing.T) {
	t.Parallel()

	cfg := server.DefaultConfig()
	cfg.Server.Port = 9000
	cfg.Server.Tables = 4

	port := 9999
	seats := 6
	cmd := ServerCmd{Port: &port, Seats: &seats}
	cmd.apply(&cfg)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 6, cfg.Server.Seats)
	assert.Equal(t, 4, cfg.Server.Tables, "unset flags keep the file value")
	assert.Equal(t, "127.0.0.1", cfg.Server.Address)
}
