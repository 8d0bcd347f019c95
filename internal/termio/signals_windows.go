//go:build windows

package termio

import "os"

// Windows has no SIGINT/SIGQUIT/SIGTERM/SIGPIPE in the POSIX sense;
// tcell's own console-ctrl handler covers cleanup (spec.md §6
// "Windows handler: console-ctrl triggers cleanup").
func terminationSignals() []os.Signal { return nil }

func ignorePipeSignal() {}

func reraiseDefault(os.Signal) {}
