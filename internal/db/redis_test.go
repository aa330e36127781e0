package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisOptions(t *testing.T) {
	tests := []struct {
		name     string
		conn     string
		wantAddr string
		wantDB   int
	}{
		{name: "default", conn: "", wantAddr: "localhost:6379"},
		{name: "bare address", conn: "cache:6380", wantAddr: "cache:6380"},
		{name: "url with db", conn: "redis://cache:6379/2", wantAddr: "cache:6379", wantDB: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := redisOptions(tt.conn)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddr, opts.Addr)
			assert.Equal(t, tt.wantDB, opts.DB)
		})
	}
}

func TestRedisOptions_InvalidURL(t *testing.T) {
	_, err := redisOptions("http://cache:6379")
	assert.Error(t, err)
}
