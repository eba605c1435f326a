//go:build !linux && !darwin

package platform

// probeHost leaves the OS and device fields to the runtime defaults.
func probeHost(c *Contexts) {}
