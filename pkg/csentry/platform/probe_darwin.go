package platform

import (
	"golang.org/x/sys/unix"
)

func probeHost(c *Contexts) {
	c.OS.Name = "macOS"
	if product, err := unix.Sysctl("kern.osproductversion"); err == nil {
		c.OS.Version = product
		if build, err := unix.Sysctl("kern.osversion"); err == nil {
			c.OS.Version += " (" + build + ")"
		}
	}
	if u, ok := readUname(); ok {
		c.OS.KernelVersion = u.kernelVersion()
		c.Device.Arch = u.machine
	}
	if model, err := unix.Sysctl("machdep.cpu.brand_string"); err == nil {
		c.Device.Model = model
	} else if model, err := unix.Sysctl("hw.model"); err == nil {
		c.Device.Model = model
	}
	if mem, err := unix.SysctlUint64("hw.memsize"); err == nil {
		c.Device.MemorySize = int64(mem)
	}
}
