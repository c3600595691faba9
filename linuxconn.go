//go:build linux

package pms5003

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hjkoskel/listserialports"
	"golang.org/x/sys/unix"
)

// LinuxConn is raw termios serial port. Each Read waits max timeout with poll
type LinuxConn struct {
	fd      int
	name    string
	timeout time.Duration
}

func openTermios(cfg Config) (Conn, error) {
	c, err := OpenLinuxSerial(cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// 8N1, raw. Sensor is read only, nothing is written
func OpenLinuxSerial(cfg Config) (*LinuxConn, error) {
	//TESTTED  socat -d -d pty,raw,echo=0 pty,raw,echo=0
	if !strings.HasPrefix(cfg.Port, "/dev/pts") { //Avoid issues with testing with socat
		portUsedByPids, _, errPortDetect := listserialports.FileIsInUseByPids(cfg.Port)
		if errPortDetect != nil {
			return nil, fmt.Errorf("serial port error %w", errPortDetect)
		}
		if 0 < len(portUsedByPids) {
			return nil, fmt.Errorf("serial port %v is in use (by PID %#v)", cfg.Port, portUsedByPids)
		}
	}

	speed, errSpeed := baudToUnix(cfg.BaudRate)
	if errSpeed != nil {
		return nil, errSpeed
	}

	fd, errOpen := unix.Open(cfg.Port, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0666)
	if errOpen != nil {
		return nil, fmt.Errorf("serial device %v open error %w", cfg.Port, errOpen)
	}
	result := LinuxConn{fd: fd, name: cfg.Port, timeout: cfg.Timeout}

	//No parity, one stop bit
	t := unix.Termios{
		Iflag:  unix.IGNPAR,
		Cflag:  unix.CREAD | unix.CLOCAL | unix.CS8 | speed,
		Ispeed: speed,
		Ospeed: speed,
	}
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0 //Timeout is done with poll

	if errSet := unix.IoctlSetTermios(fd, unix.TCSETS, &t); errSet != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("setting termios on %v fail %w", cfg.Port, errSet)
	}

	if errNonBlock := unix.SetNonblock(fd, false); errNonBlock != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("setting nonblock %w", errNonBlock)
	}
	return &result, nil
}

func (p *LinuxConn) ResetInput() error {
	if p.fd < 0 {
		return io.ErrClosedPipe
	}
	return unix.IoctlSetInt(p.fd, unix.TCFLSH, unix.TCIFLUSH)
}

func (p *LinuxConn) Read(buf []byte) (int, error) {
	if p.fd < 0 {
		return 0, io.EOF
	}
	if len(buf) == 0 {
		return 0, nil
	}

	pfd := []unix.PollFd{{Fd: int32(p.fd), Events: unix.POLLIN}}
	for {
		ready, errPoll := unix.Poll(pfd, pollTimeoutMs(p.timeout))
		if errPoll == unix.EINTR {
			continue
		}
		if errPoll != nil {
			return 0, fmt.Errorf("poll %v fail %w", p.name, errPoll)
		}
		if ready == 0 {
			return 0, ErrReadTimeout
		}
		break
	}
	if pfd[0].Revents&unix.POLLIN == 0 { //Hangup or error without data
		return 0, io.EOF
	}

	n, errRead := unix.Read(p.fd, buf)
	if errRead == unix.EIO { //Other end of pty closed or usb adapter unplugged
		return 0, io.EOF
	}
	if errRead != nil {
		return 0, fmt.Errorf("error reading %v err=%w", p.name, errRead)
	}
	if n <= 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (p *LinuxConn) Close() error {
	if p.fd < 0 {
		return nil
	}
	err := unix.Close(p.fd)
	p.fd = -1
	return err
}

// Rounds up, poll(0) would not wait at all
func pollTimeoutMs(timeout time.Duration) int {
	return int((timeout + time.Millisecond - 1) / time.Millisecond)
}

func baudToUnix(baud int) (uint32, error) {
	switch baud {
	case 1200:
		return unix.B1200, nil
	case 2400:
		return unix.B2400, nil
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	}
	return 0, fmt.Errorf("baud rate %v not supported", baud)
}
