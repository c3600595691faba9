package pms5003

import (
	"fmt"
	"time"
)

// Reference deployment: sensor on USB serial adapter, fixed 9600 baud
const (
	DEFAULTPORT     = "/dev/ttyUSB0"
	DEFAULTBAUDRATE = 9600
	DEFAULTTIMEOUT  = 2 * time.Second
)

const (
	DRIVER_TERMIOS = "termios" //Raw linux termios, default
	DRIVER_BUGST   = "bugst"   //go.bug.st/serial
)

/*
Config is passed to reader on every call. Nothing is kept on package level
*/
type Config struct {
	Port     string
	BaudRate int
	Timeout  time.Duration //Bound for single blocking read
	Driver   string
}

func DefaultConfig() Config {
	return Config{
		Port:     DEFAULTPORT,
		BaudRate: DEFAULTBAUDRATE,
		Timeout:  DEFAULTTIMEOUT,
		Driver:   DRIVER_TERMIOS,
	}
}

func (p *Config) Validate() error {
	if p.Port == "" {
		return fmt.Errorf("serial port not defined")
	}
	if p.BaudRate <= 0 {
		return fmt.Errorf("invalid baud rate %v", p.BaudRate)
	}
	if p.Timeout <= 0 {
		return fmt.Errorf("invalid read timeout %v", p.Timeout)
	}
	switch p.Driver {
	case DRIVER_TERMIOS, DRIVER_BUGST:
		return nil
	}
	return fmt.Errorf("unknown serial driver %q", p.Driver)
}
