//go:build linux || darwin

package platform

import (
	"strings"

	"golang.org/x/sys/unix"
)

type uname struct {
	sysname string
	release string
	version string
	machine string
}

func readUname() (uname, bool) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return uname{}, false
	}
	return uname{
		sysname: unix.ByteSliceToString(u.Sysname[:]),
		release: unix.ByteSliceToString(u.Release[:]),
		version: unix.ByteSliceToString(u.Version[:]),
		machine: unix.ByteSliceToString(u.Machine[:]),
	}, true
}

// kernelVersion joins every uname field, like `uname -srvm`.
func (u uname) kernelVersion() string {
	return strings.Join([]string{u.sysname, u.release, u.version, u.machine}, " ")
}
