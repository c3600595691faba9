/*
For unpacking and packing Plantower (PMS5003, PMS7003...) data frames

Sensor in active mode sends one frame per second
  0-1   0x42 0x4D
  2-3   frame length, 2*13+2 = 28
  4-15  PM1.0, PM2.5, PM10 standard particle (CF=1) and same under atmospheric environment
  16-27 particle counts in 0.1L air, >0.3 >0.5 >1.0 >2.5 >5.0 >10um
  28    version
  29    error code
  30-31 checksum, sum of bytes 0-29

All 16bit values are big endian
*/
package pms5003

import (
	"encoding/binary"
	"fmt"
)

const FRAMESIZE = 32

const (
	FRAMESTART1 = 0x42
	FRAMESTART2 = 0x4D
)

const FRAMELENGTH = FRAMESIZE - 4 //Value on length field, excludes start bytes and length itself

// Byte offsets on frame
const (
	OFFSET_LENGTH     = 2
	OFFSET_PM1_CF1    = 4
	OFFSET_PM25_CF1   = 6
	OFFSET_PM10_CF1   = 8
	OFFSET_PM1_ATM    = 10
	OFFSET_PM25_ATM   = 12
	OFFSET_PM10_ATM   = 14
	OFFSET_COUNTS     = 16
	OFFSET_VERSION    = 28
	OFFSET_ERRORCODE  = 29
	OFFSET_CHECKSUM   = 30
	NUMBEROFCOUNTBINS = 6
)

type Frame [FRAMESIZE]byte

// Only check that is done when reading. Checksum is not verified
func (p *Frame) SyncOk() bool {
	return p[0] == FRAMESTART1 && p[1] == FRAMESTART2
}

func (p *Frame) uint16At(offset int) uint16 {
	return binary.BigEndian.Uint16(p[offset : offset+2])
}

func (p *Frame) putUint16At(offset int, v uint16) {
	binary.BigEndian.PutUint16(p[offset:offset+2], v)
}

// PM2.5 standard particle µg/m³, bytes 6 and 7
func (p *Frame) PM25() uint16 {
	return p.uint16At(OFFSET_PM25_CF1)
}

func (p *Frame) Checksum() uint16 {
	return p.uint16At(OFFSET_CHECKSUM)
}

func (p *Frame) CalcChecksum() uint16 {
	result := uint16(0)
	for _, b := range p[0:OFFSET_CHECKSUM] {
		result += uint16(b)
	}
	return result
}

func (p *Frame) ChecksumOk() bool {
	return p.Checksum() == p.CalcChecksum()
}

// FrameData is all fields of frame, µg/m³ and counts per 0.1L
type FrameData struct {
	PM1Standard  uint16
	PM25Standard uint16
	PM10Standard uint16
	PM1Atm       uint16
	PM25Atm      uint16
	PM10Atm      uint16
	Counts       [NUMBEROFCOUNTBINS]uint16 //>0.3 >0.5 >1.0 >2.5 >5.0 >10um
	Version      byte
	ErrorCode    byte
}

// Bin lower limits in micrometers, same order as FrameData.Counts
var CountBinLimits = [NUMBEROFCOUNTBINS]float64{0.3, 0.5, 1.0, 2.5, 5.0, 10}

func (p *Frame) Decode() FrameData {
	result := FrameData{
		PM1Standard:  p.uint16At(OFFSET_PM1_CF1),
		PM25Standard: p.uint16At(OFFSET_PM25_CF1),
		PM10Standard: p.uint16At(OFFSET_PM10_CF1),
		PM1Atm:       p.uint16At(OFFSET_PM1_ATM),
		PM25Atm:      p.uint16At(OFFSET_PM25_ATM),
		PM10Atm:      p.uint16At(OFFSET_PM10_ATM),
		Version:      p[OFFSET_VERSION],
		ErrorCode:    p[OFFSET_ERRORCODE],
	}
	for i := range result.Counts {
		result.Counts[i] = p.uint16At(OFFSET_COUNTS + 2*i)
	}
	return result
}

// NewFrame creates frame like sensor sends. Start bytes, length and checksum are filled
func NewFrame(data FrameData) Frame {
	result := Frame{FRAMESTART1, FRAMESTART2}
	result.putUint16At(OFFSET_LENGTH, FRAMELENGTH)
	result.putUint16At(OFFSET_PM1_CF1, data.PM1Standard)
	result.putUint16At(OFFSET_PM25_CF1, data.PM25Standard)
	result.putUint16At(OFFSET_PM10_CF1, data.PM10Standard)
	result.putUint16At(OFFSET_PM1_ATM, data.PM1Atm)
	result.putUint16At(OFFSET_PM25_ATM, data.PM25Atm)
	result.putUint16At(OFFSET_PM10_ATM, data.PM10Atm)
	for i, c := range data.Counts {
		result.putUint16At(OFFSET_COUNTS+2*i, c)
	}
	result[OFFSET_VERSION] = data.Version
	result[OFFSET_ERRORCODE] = data.ErrorCode
	result.putUint16At(OFFSET_CHECKSUM, result.CalcChecksum())
	return result
}

func (p *Frame) String() string {
	if !p.SyncOk() {
		return fmt.Sprintf("INVALID FRAME %X", p[:])
	}
	d := p.Decode()
	result := fmt.Sprintf("<PMS:v%v PM1=%v PM2.5=%v PM10=%v atm:%v/%v/%v", d.Version, d.PM1Standard, d.PM25Standard, d.PM10Standard, d.PM1Atm, d.PM25Atm, d.PM10Atm)
	if d.ErrorCode != 0 {
		result += fmt.Sprintf(" err=%X", d.ErrorCode)
	}
	if !p.ChecksumOk() {
		result += " BADSUM"
	}
	return result + ">"
}

func (p *Frame) DebugText() string { //Like in datasheet
	d := p.Decode()
	result := "--- frame ---\n"
	result += fmt.Sprintf("start=%X %X length=%v\n", p[0], p[1], p.uint16At(OFFSET_LENGTH))
	result += fmt.Sprintf("PM1.0=%v PM2.5=%v PM10=%v µg/m³ (CF=1)\n", d.PM1Standard, d.PM25Standard, d.PM10Standard)
	result += fmt.Sprintf("PM1.0=%v PM2.5=%v PM10=%v µg/m³ (atmospheric)\n", d.PM1Atm, d.PM25Atm, d.PM10Atm)
	for i, c := range d.Counts {
		result += fmt.Sprintf(">%.1fum: %v /0.1L\n", CountBinLimits[i], c)
	}
	result += fmt.Sprintf("version=%v errorcode=%v\n", d.Version, d.ErrorCode)
	result += fmt.Sprintf("checksum=%X calculated=%X\n", p.Checksum(), p.CalcChecksum())
	return result + "-----------\n"
}
