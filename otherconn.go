//go:build !linux

package pms5003

import "fmt"

func openTermios(cfg Config) (Conn, error) {
	return nil, fmt.Errorf("termios driver is linux only, use %q driver", DRIVER_BUGST)
}
