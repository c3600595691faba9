package pms5003

import (
	"errors"
	"fmt"
	"io"

	"go.bug.st/serial"
)

// BugstConn is portable alternative for termios. Works also on mac and windows
type BugstConn struct {
	port serial.Port
	name string
}

func OpenBugstSerial(cfg Config) (*BugstConn, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, errOpen := serial.Open(cfg.Port, mode)
	if errOpen != nil {
		return nil, fmt.Errorf("serial device %v open error %w", cfg.Port, errOpen)
	}
	if errTimeout := port.SetReadTimeout(cfg.Timeout); errTimeout != nil {
		port.Close()
		return nil, fmt.Errorf("setting read timeout on %v fail %w", cfg.Port, errTimeout)
	}
	return &BugstConn{port: port, name: cfg.Port}, nil
}

func (p *BugstConn) ResetInput() error {
	return p.port.ResetInputBuffer()
}

// go.bug.st/serial returns 0 bytes without error when read times out
func (p *BugstConn) Read(buf []byte) (int, error) {
	n, err := p.port.Read(buf)
	if err != nil {
		var portErr *serial.PortError
		if errors.As(err, &portErr) && portErr.Code() == serial.PortClosed {
			return n, io.EOF
		}
		return n, fmt.Errorf("error reading %v err=%w", p.name, err)
	}
	if n == 0 && 0 < len(buf) {
		return 0, ErrReadTimeout
	}
	return n, nil
}

func (p *BugstConn) Close() error {
	return p.port.Close()
}

// Write is used by simulator. Reader never writes to sensor
func (p *BugstConn) Write(data []byte) (int, error) {
	return p.port.Write(data)
}
