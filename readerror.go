package pms5003

import "fmt"

type ErrorKind int

const (
	DeviceUnavailable ErrorKind = iota + 1 //Open failed. missing, permission, busy
	Timeout                                //Nothing came in time
	Truncated                              //Stream ended before full frame
)

func (k ErrorKind) String() string {
	switch k {
	case DeviceUnavailable:
		return "device unavailable"
	case Timeout:
		return "timeout"
	case Truncated:
		return "truncated"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ReadError is returned by reader on every failure. Err is the underlying cause
type ReadError struct {
	Kind ErrorKind
	Err  error
}

func (e *ReadError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err.Error())
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Is matches another *ReadError with same kind. Allows errors.Is(err, &ReadError{Kind: Timeout})
func (e *ReadError) Is(target error) bool {
	t, ok := target.(*ReadError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Err == nil
}
