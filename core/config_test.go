package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseSeedAccounts(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []SeedAccount
	}{
		{name: "empty", in: "", want: []SeedAccount{}},
		{
			name: "pairs",
			in:   "user1:password123,User2:pass:word",
			want: []SeedAccount{{Username: "user1", Password: "password123"}, {Username: "user2", Password: "pass:word"}},
		},
		{
			name: "malformed skipped",
			in:   "nocolon, :nouser,nopwd:,ok:fine",
			want: []SeedAccount{{Username: "ok", Password: "fine"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSeedAccounts(tt.in))
		})
	}
}

func TestNewConfig(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("TEST_DATABASE_PATH", "/tmp/other.db")
	t.Setenv("TEST_SESSION_MAXAGE", "30m")
	t.Setenv("TEST_SEED_USERS", "alice:wonderland")

	conf := NewConfig()
	assert.Equal(t, "TEST", conf.Env)
	assert.True(t, conf.TestMode)
	assert.False(t, conf.Debug)
	assert.Equal(t, "/tmp/other.db", conf.Database.Path)
	assert.Equal(t, 30*time.Minute, conf.Session.MaxAge)
	assert.Equal(t, []SeedAccount{{Username: "alice", Password: "wonderland"}}, conf.Seed.Users)
	assert.Equal(t, "admin", conf.Seed.AdminUsername)
	assert.Equal(t, "Database 101", conf.Seed.Module.Title)
}
