// Package transport obtains the (trIn, trOut) descriptor pair the
// forwarding engine consumes, for each of the three transfer modes
// spec.md §4.6 and §6 define: stdio, server (listening), and client
// (connecting).
package transport

import "os"

// Stdio returns the process's standard input and output descriptors,
// used directly as trIn/trOut in stdio transfer mode.
func Stdio() (trIn, trOut int) {
	return int(os.Stdin.Fd()), int(os.Stdout.Fd())
}
