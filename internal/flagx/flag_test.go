package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-c", "conf.json", "-a", "http://api"},
			allowed: []string{"-c"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "equals form",
			args:    []string{"-config=alt.json", "-a", "http://api"},
			allowed: []string{"-config"},
			want:    []string{"-config=alt.json"},
		},
		{
			name:    "next dash token is not a value",
			args:    []string{"-c", "-w", "ws://x"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-e"},
			allowed: []string{"-e"},
			want:    []string{"-e"},
		},
		{
			name:    "several allowed, order kept",
			args:    []string{"-a", "http://api", "-x", "1", "-w", "ws://rt"},
			allowed: []string{"-a", "-w"},
			want:    []string{"-a", "http://api", "-w", "ws://rt"},
		},
		{
			name:    "nothing allowed matches",
			args:    []string{"positional", "-q=1"},
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	os.Args = []string{"bin", "-c", "/tmp/a.json", "-a", "http://x"}
	assert.Equal(t, "/tmp/a.json", JsonConfigFlags())

	os.Args = []string{"bin", "-config=/tmp/b.json"}
	assert.Equal(t, "/tmp/b.json", JsonConfigFlags())

	os.Args = []string{"bin", "-a", "http://x"}
	assert.Empty(t, JsonConfigFlags())
}

func TestEnvFileFlags(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	os.Args = []string{"bin", "-env", "/tmp/.env", "-c", "/tmp/a.json"}
	assert.Equal(t, "/tmp/.env", EnvFileFlags())

	os.Args = []string{"bin", "-e", "local.env"}
	assert.Equal(t, "local.env", EnvFileFlags())

	os.Args = []string{"bin"}
	assert.Empty(t, EnvFileFlags())
}
