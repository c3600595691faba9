/*
Conn
is connection for reading raw bytes from serial line

This is interface. Reader opens one per measurement and closes it when done.
Implementations: linux termios and go.bug.st/serial. Tests use fakes
*/
package pms5003

import (
	"errors"
	"fmt"
)

// ErrReadTimeout is returned by Conn.Read when nothing arrives within configured timeout.
// End of stream is reported as io.EOF
var ErrReadTimeout = errors.New("serial read timeout")

type Conn interface {
	Read(p []byte) (int, error)
	ResetInput() error //Drop bytes already buffered on line
	Close() error
}

// Opener creates connection by config. Swapped in tests
type Opener func(cfg Config) (Conn, error)

// OpenConn is default opener, picks driver by config
func OpenConn(cfg Config) (Conn, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Driver {
	case DRIVER_BUGST:
		c, err := OpenBugstSerial(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	case DRIVER_TERMIOS:
		return openTermios(cfg)
	}
	return nil, fmt.Errorf("unknown serial driver %q", cfg.Driver)
}
