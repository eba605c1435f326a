// Package platform describes the host a client runs on: the operating
// system, the device, the running binary and the current user.
//
// Probe never fails. Fields that cannot be determined are left empty and
// omitted from the JSON encoding.
package platform

import (
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
)

// OS describes the operating system.
type OS struct {
	Name          string `json:"name,omitempty"`
	Version       string `json:"version,omitempty"`
	KernelVersion string `json:"kernel_version,omitempty"`
}

// Device describes the hardware. Memory sizes are in bytes.
type Device struct {
	Model      string `json:"model,omitempty"`
	Arch       string `json:"arch,omitempty"`
	MemorySize int64  `json:"memory_size,omitempty"`
	FreeMemory int64  `json:"free_memory,omitempty"`
}

// App describes the running binary.
type App struct {
	AppIdentifier string `json:"app_identifier,omitempty"`
	AppVersion    string `json:"app_version,omitempty"`
	BuildType     string `json:"build_type"`
	PointerBits   int    `json:"pointer_bits"`
	Compiler      string `json:"compiler,omitempty"`
}

// Runtime describes the language runtime.
type Runtime struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Contexts is the value stored under "contexts" in every event.
type Contexts struct {
	OS      OS      `json:"os"`
	Device  Device  `json:"device"`
	App     App     `json:"app"`
	Runtime Runtime `json:"runtime"`
}

// Probe collects the contexts for the current host.
func Probe() Contexts {
	c := Contexts{
		App: probeApp(),
		Runtime: Runtime{
			Name:    "go",
			Version: runtime.Version(),
		},
	}
	probeHost(&c)
	if c.OS.Name == "" {
		c.OS.Name = runtime.GOOS
	}
	if c.Device.Arch == "" {
		c.Device.Arch = runtime.GOARCH
	}
	return c
}

func probeApp() App {
	app := App{
		BuildType:   "release",
		PointerBits: strconv.IntSize,
		Compiler:    runtime.Compiler,
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return app
	}
	app.AppIdentifier = info.Main.Path
	app.AppVersion = info.Main.Version
	app.BuildType = buildType(info.Settings)
	return app
}

// buildType reports "debug" for binaries built with optimizations disabled
// or with the race detector.
func buildType(settings []debug.BuildSetting) string {
	for _, s := range settings {
		switch s.Key {
		case "-gcflags":
			if strings.Contains(s.Value, "-N") {
				return "debug"
			}
		case "-race":
			if s.Value == "true" {
				return "debug"
			}
		}
	}
	return "release"
}
