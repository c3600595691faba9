package pms5003

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

const TIMESTAMPFORMAT = "2006-01-02 15:04:05"

// Measurement is one PM2.5 reading, µg/m³. Timestamp is wall clock time when frame was captured
type Measurement struct {
	PM25      uint16
	Timestamp time.Time
}

// MeasurementFromFrame takes PM2.5 from frame, timestamp has second precision
func MeasurementFromFrame(frame Frame, tCapture time.Time) Measurement {
	return Measurement{PM25: frame.PM25(), Timestamp: tCapture.Truncate(time.Second)}
}

// Same keys on json and cbor
type measurementDoc struct {
	PM25      uint16 `json:"pm25" cbor:"pm25"`
	Timestamp string `json:"timestamp" cbor:"timestamp"`
}

func (p Measurement) doc() measurementDoc {
	return measurementDoc{PM25: p.PM25, Timestamp: p.Timestamp.Local().Format(TIMESTAMPFORMAT)}
}

func (p Measurement) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.doc())
}

func (p Measurement) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(p.doc())
}

func (p Measurement) String() string {
	return fmt.Sprintf("%v PM2.5= %vµg/m³", p.Timestamp.Format(TIMESTAMPFORMAT), p.PM25)
}
