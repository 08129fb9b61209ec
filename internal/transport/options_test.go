package transport

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/overssh/overssh/internal/errors"
	"github.com/overssh/overssh/internal/target"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    Options
		wantErr bool
	}{
		{
			name: "empty list",
			args: nil,
			want: Options{},
		},
		{
			name: "port and user",
			args: []string{"-p", "2222", "-l", "alice"},
			want: Options{Port: "2222", User: "alice"},
		},
		{
			name: "ipv4 only",
			args: []string{"-4"},
			want: Options{Network: "tcp4"},
		},
		{
			name: "ipv6 only",
			args: []string{"-6"},
			want: Options{Network: "tcp6"},
		},
		{
			name:    "v4 and v6 conflict",
			args:    []string{"-4", "-6"},
			wantErr: true,
		},
		{
			name: "config file",
			args: []string{"-F", "/tmp/sshconf"},
			want: Options{ConfigFile: "/tmp/sshconf"},
		},
		{
			name: "connect timeout",
			args: []string{"-o", "ConnectTimeout=5"},
			want: Options{Timeout: 5 * time.Second},
		},
		{
			name: "strict host key checking off",
			args: []string{"-o", "StrictHostKeyChecking=no"},
			want: Options{Insecure: true},
		},
		{
			name: "unknown client option ignored",
			args: []string{"-o", "ServerAliveInterval=30"},
			want: Options{},
		},
		{
			name:    "client option without value",
			args:    []string{"-o", "ConnectTimeout"},
			wantErr: true,
		},
		{
			name:    "negative connect timeout",
			args:    []string{"-o", "ConnectTimeout=-1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArgs(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, oerrors.IsCode(err, oerrors.ErrUsage), "want a usage error, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_Defaults(t *testing.T) {
	t.Setenv("USER", "testuser")

	s := Resolve(target.Target{Host: "mini"}, Options{ConfigFile: "/nonexistent"})

	assert.Equal(t, "mini", s.Hostname)
	assert.Equal(t, "22", s.Port)
	assert.Equal(t, "testuser", s.User)
	assert.Equal(t, "tcp", s.Network)
	assert.Equal(t, defaultTimeout, s.Timeout)
}

func TestResolve_Precedence(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config")
	config := "Host mini\n  HostName 192.168.1.50\n  Port 2200\n  User configuser\n"
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0600))

	t.Run("config file fills unset fields", func(t *testing.T) {
		s := Resolve(target.Target{Host: "mini"}, Options{ConfigFile: configPath})
		assert.Equal(t, "192.168.1.50", s.Hostname)
		assert.Equal(t, "2200", s.Port)
		assert.Equal(t, "configuser", s.User)
	})

	t.Run("explicit options beat config file", func(t *testing.T) {
		s := Resolve(target.Target{Host: "mini"}, Options{
			ConfigFile: configPath,
			Port:       "2222",
			User:       "flaguser",
		})
		assert.Equal(t, "2222", s.Port)
		assert.Equal(t, "flaguser", s.User)
	})

	t.Run("target user beats -l", func(t *testing.T) {
		s := Resolve(target.Target{User: "embedded", Host: "mini"}, Options{
			ConfigFile: configPath,
			User:       "flaguser",
		})
		assert.Equal(t, "embedded", s.User)
	})

	t.Run("network and timeout pass through", func(t *testing.T) {
		s := Resolve(target.Target{Host: "mini"}, Options{
			ConfigFile: configPath,
			Network:    "tcp6",
			Timeout:    3 * time.Second,
		})
		assert.Equal(t, "tcp6", s.Network)
		assert.Equal(t, 3*time.Second, s.Timeout)
	})
}

func TestSettings_Addr(t *testing.T) {
	s := &Settings{Hostname: "mini", Port: "2222"}
	assert.Equal(t, "mini:2222", s.Addr())

	s = &Settings{Hostname: "fe80::1", Port: "22"}
	assert.Equal(t, "[fe80::1]:22", s.Addr())
}

func TestSettings_Describe(t *testing.T) {
	s := &Settings{
		Hostname: "mini",
		Port:     "22",
		User:     "alice",
		Network:  "tcp",
		Timeout:  5 * time.Second,
	}
	out := s.Describe()

	assert.Contains(t, out, "hostname mini")
	assert.Contains(t, out, "user alice")
	assert.NotContains(t, out, "identityfile", "empty identity file should be omitted")
}
