package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "separate value",
			args:         []string{"-c", "conf.json", "-a", ":3000"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "equals form",
			args:         []string{"-config=alt.json", "-a", ":3000"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"-config=alt.json"},
		},
		{
			name:         "unknown flags dropped",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "trailing flag without value",
			args:         []string{"-c"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "next token looks like a flag",
			args:         []string{"-s", "-d", "postgres://x"},
			allowedFlags: []string{"-s", "-d"},
			want:         []string{"-s", "-d", "postgres://x"},
		},
		{
			name:         "order preserved across several flags",
			args:         []string{"-a", ":3000", "-g", ":50051", "-c", "conf.json"},
			allowedFlags: []string{"-a", "-g"},
			want:         []string{"-a", ":3000", "-g", ":50051"},
		},
		{
			name:         "empty",
			args:         []string{},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "short", args: []string{"bin", "-c", "/etc/taskkeeper.json"}, want: "/etc/taskkeeper.json"},
		{name: "long", args: []string{"bin", "-config", "/tmp/tk.json"}, want: "/tmp/tk.json"},
		{name: "absent", args: []string{"bin", "-a", ":3000"}, want: ""},
		{name: "last wins", args: []string{"bin", "-c", "1.json", "-config", "2.json"}, want: "2.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			assert.Equal(t, tt.want, ConfigFileFlag())
		})
	}
}
