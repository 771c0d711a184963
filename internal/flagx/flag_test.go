package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		allowed   []string
		boolFlags []string
		want      []string
	}{
		{
			name:    "separate value",
			args:    []string{"-c", "conf.json", "-a", "localhost"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "equals form",
			args:    []string{"-config=alt.json", "-a", "localhost"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-config=alt.json"},
		},
		{
			name:    "unknown flags and positionals ignored",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "value flag at end",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "value flag followed by flag",
			args:    []string{"-c", "-a", "x"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:      "bool flag does not swallow positional",
			args:      []string{"-r", "vault.db", "-a", "host:1"},
			allowed:   []string{"-a"},
			boolFlags: []string{"-r"},
			want:      []string{"-r", "-a", "host:1"},
		},
		{
			name:      "bool flag with explicit value",
			args:      []string{"-r=false"},
			boolFlags: []string{"-r"},
			want:      []string{"-r=false"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowed, tt.boolFlags...)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigPath(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	os.Args = []string{"bin", "-a", "x:1", "-c", "client.json"}
	assert.Equal(t, "client.json", ConfigPath())

	os.Args = []string{"bin", "-config=server.json"}
	assert.Equal(t, "server.json", ConfigPath())

	os.Args = []string{"bin"}
	assert.Equal(t, "", ConfigPath())
}
