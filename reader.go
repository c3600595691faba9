/*
Reader

Reads one measurement per call. Every call opens serial port, clears input buffer,
reads 32 byte windows until window starts with 0x42 0x4D and closes port.

There is no retry limit on sync search. If sensor keeps sending without ever
aligning to 32 byte window, call returns only when some read times out or stream ends.
*/
package pms5003

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Reads returning nothing and no error. Guard against broken Conn implementations
const MAXEMPTYREADS = 100

var portLocks sync.Map //port name -> *sync.Mutex

// Only one connection per device at time inside process. Others wait
func lockPort(port string) func() {
	m, _ := portLocks.LoadOrStore(port, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

type Reader struct {
	cfg  Config
	open Opener
	now  func() time.Time
}

// NewReader with nil opener uses OpenConn
func NewReader(cfg Config, open Opener) *Reader {
	if open == nil {
		open = OpenConn
	}
	return &Reader{cfg: cfg, open: open, now: time.Now}
}

func (p *Reader) Config() Config {
	return p.cfg
}

// ReadMeasurement is one shot read with fresh connection
func ReadMeasurement(cfg Config) (Measurement, error) {
	return NewReader(cfg, nil).ReadMeasurement()
}

func (p *Reader) ReadMeasurement() (Measurement, error) {
	frame, tCapture, err := p.ReadFrame()
	if err != nil {
		return Measurement{}, err
	}
	return MeasurementFromFrame(frame, tCapture), nil
}

// ReadFrame returns first frame with valid start bytes and its capture time
func (p *Reader) ReadFrame() (frame Frame, tCapture time.Time, err error) {
	unlock := lockPort(p.cfg.Port)
	defer unlock()

	defer func() {
		if r := recover(); r != nil {
			frame = Frame{}
			tCapture = time.Time{}
			err = &ReadError{Kind: Truncated, Err: fmt.Errorf("panic while reading %v: %v", p.cfg.Port, r)}
		}
	}()

	conn, errOpen := p.open(p.cfg)
	if errOpen != nil {
		return Frame{}, time.Time{}, &ReadError{Kind: DeviceUnavailable, Err: errOpen}
	}
	defer conn.Close()

	if errReset := conn.ResetInput(); errReset != nil {
		return Frame{}, time.Time{}, &ReadError{Kind: DeviceUnavailable, Err: fmt.Errorf("clearing input buffer of %v fail %w", p.cfg.Port, errReset)}
	}

	for {
		if errWindow := readWindow(conn, frame[:]); errWindow != nil {
			return Frame{}, time.Time{}, errWindow
		}
		if frame.SyncOk() {
			return frame, p.now(), nil
		}
		//Line noise or middle of frame, drop whole window
	}
}

// Fills buf completely or returns ReadError
func readWindow(conn Conn, buf []byte) error {
	got := 0
	empty := 0
	for got < len(buf) {
		n, err := conn.Read(buf[got:])
		if 0 < n {
			got += n
			empty = 0
		}
		if len(buf) <= got {
			return nil
		}
		if err != nil {
			if errors.Is(err, ErrReadTimeout) {
				return &ReadError{Kind: Timeout, Err: fmt.Errorf("got %v of %v bytes: %w", got, len(buf), err)}
			}
			return &ReadError{Kind: Truncated, Err: fmt.Errorf("stream ended after %v of %v bytes: %w", got, len(buf), err)}
		}
		if n <= 0 {
			empty++
			if MAXEMPTYREADS <= empty {
				return &ReadError{Kind: Truncated, Err: fmt.Errorf("no progress after %v of %v bytes", got, len(buf))}
			}
		}
	}
	return nil
}
