package platform

import (
	"encoding/json"
	"errors"
	"os/user"
	"runtime"
	"runtime/debug"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe_FillsRuntimeAndApp(t *testing.T) {
	c := Probe()

	assert.Equal(t, "go", c.Runtime.Name)
	assert.Equal(t, runtime.Version(), c.Runtime.Version)
	assert.Equal(t, strconv.IntSize, c.App.PointerBits)
	assert.NotEmpty(t, c.App.BuildType)
	assert.NotEmpty(t, c.OS.Name)
	assert.NotEmpty(t, c.Device.Arch)
}

func TestContexts_JSONShape(t *testing.T) {
	raw, err := json.Marshal(Contexts{
		OS:     OS{Name: "Linux"},
		Device: Device{Arch: "x86_64"},
		App:    App{BuildType: "release", PointerBits: 64},
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"os": {"name": "Linux"},
		"device": {"arch": "x86_64"},
		"app": {"build_type": "release", "pointer_bits": 64},
		"runtime": {"name": "", "version": ""}
	}`, string(raw))
}

func TestBuildType(t *testing.T) {
	tests := []struct {
		name     string
		settings []debug.BuildSetting
		want     string
	}{
		{"no settings", nil, "release"},
		{"optimizations off", []debug.BuildSetting{{Key: "-gcflags", Value: "all=-N -l"}}, "debug"},
		{"race detector", []debug.BuildSetting{{Key: "-race", Value: "true"}}, "debug"},
		{"trimpath only", []debug.BuildSetting{{Key: "-trimpath", Value: "true"}}, "release"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildType(tt.settings))
		})
	}
}

func TestLookupUser_FromDatabase(t *testing.T) {
	current := func() (*user.User, error) {
		return &user.User{Username: "alice", Uid: "1000", Gid: "100", HomeDir: "/home/alice"}, nil
	}
	env := map[string]string{"SHELL": "/bin/zsh"}
	hostname := func() (string, error) { return "box", nil }

	u := lookupUser(current, func(k string) string { return env[k] }, hostname)

	assert.Equal(t, "alice", u.Name)
	require.NotNil(t, u.UID)
	assert.Equal(t, 1000, *u.UID)
	require.NotNil(t, u.GID)
	assert.Equal(t, 100, *u.GID)
	assert.Equal(t, "/home/alice", u.Home)
	assert.Equal(t, "/bin/zsh", u.Shell)
	assert.Equal(t, "box", u.Hostname)
}

func TestLookupUser_EnvironmentFallback(t *testing.T) {
	current := func() (*user.User, error) { return nil, errors.New("no passwd") }
	env := map[string]string{"USER": "bob", "HOME": "/tmp/bob", "SHELL": "/bin/sh"}
	hostname := func() (string, error) { return "", errors.New("no hostname") }

	u := lookupUser(current, func(k string) string { return env[k] }, hostname)

	assert.Equal(t, "bob", u.Name)
	assert.Equal(t, "/tmp/bob", u.Home)
	assert.Equal(t, "/bin/sh", u.Shell)
	assert.Empty(t, u.Hostname)
}

func TestLookupUser_NonNumericIDs(t *testing.T) {
	current := func() (*user.User, error) {
		return &user.User{Username: "svc", Uid: "S-1-5-21", Gid: "S-1-5-32"}, nil
	}
	u := lookupUser(current, func(string) string { return "" }, func() (string, error) { return "h", nil })

	assert.Nil(t, u.UID)
	assert.Nil(t, u.GID)

	raw, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"svc","hostname":"h"}`, string(raw))
}
