package platform

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func probeHost(c *Contexts) {
	probeFrom(c, "/proc")
	c.OS.Name = "Linux"
	if u, ok := readUname(); ok {
		// "6.8.0-45-generic" reports as "6.8.0".
		c.OS.Version, _, _ = strings.Cut(u.release, "-")
		c.OS.KernelVersion = u.kernelVersion()
		c.Device.Arch = u.machine
	}
}

// probeFrom fills the device fields from a /proc tree rooted at procRoot.
func probeFrom(c *Contexts, procRoot string) {
	c.Device.Model = readCPUModel(filepath.Join(procRoot, "cpuinfo"))
	meminfo := filepath.Join(procRoot, "meminfo")
	c.Device.MemorySize = readMeminfo(meminfo, "MemTotal:")
	c.Device.FreeMemory = readMeminfo(meminfo, "MemAvailable:")
}

// readCPUModel extracts the first "model name" line from /proc/cpuinfo.
func readCPUModel(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "model name") {
			if _, value, ok := strings.Cut(line, ":"); ok {
				return strings.TrimSpace(value)
			}
		}
	}
	return ""
}

// readMeminfo returns the named /proc/meminfo entry in bytes, or 0.
func readMeminfo(path, field string) int64 {
	file, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, field) {
			continue
		}
		fields := strings.Fields(strings.TrimPrefix(line, field))
		if len(fields) == 0 {
			return 0
		}
		kb, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil || kb < 0 {
			return 0
		}
		return kb << 10
	}
	return 0
}
