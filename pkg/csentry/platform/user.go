package platform

import (
	"os"
	"os/user"
	"strconv"
)

// User is the default "user" section of a context document.
type User struct {
	Name     string `json:"name,omitempty"`
	UID      *int   `json:"uid,omitempty"`
	GID      *int   `json:"gid,omitempty"`
	Home     string `json:"home,omitempty"`
	Shell    string `json:"shell,omitempty"`
	Hostname string `json:"hostname,omitempty"`
}

// LookupUser describes the user running the process. It consults the OS user
// database first and falls back to $USER, $HOME and the process ids.
func LookupUser() User {
	return lookupUser(user.Current, os.Getenv, os.Hostname)
}

func lookupUser(
	current func() (*user.User, error),
	getenv func(string) string,
	hostname func() (string, error),
) User {
	var u User
	if cur, err := current(); err == nil {
		u.Name = cur.Username
		u.UID = atoi(cur.Uid)
		u.GID = atoi(cur.Gid)
		u.Home = cur.HomeDir
	} else {
		u.Name = getenv("USER")
		u.UID = intPtr(os.Getuid())
		u.GID = intPtr(os.Getgid())
		u.Home = getenv("HOME")
	}
	// The user database lookup in os/user does not expose the login shell.
	u.Shell = getenv("SHELL")
	u.Hostname, _ = hostname()
	return u
}

// atoi returns nil for non-numeric ids such as Windows SIDs.
func atoi(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func intPtr(n int) *int {
	if n < 0 {
		return nil
	}
	return &n
}
