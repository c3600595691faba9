/*
Sensor model

Model is changed by user while running. Simulator acts as faulty sensor
(or comm link) when connectivity model says so
*/

package main

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"pms5003"
)

type SensorModelStatus struct {
	FrameCounter   int    `json:"frameCounter"`
	GarbageCounter int    `json:"garbageCounter"` //Idle character bursts
	PM25Now        uint16 `json:"pm25Now"`
	PM10Now        uint16 `json:"pm10Now"`
}

type SensorModel struct {
	PowerOn      bool              `json:"powerOn"`
	Version      byte              `json:"version"`
	ErrorCode    byte              `json:"errorCode"`
	PM25         SignalModel       `json:"pm25"`
	PM10         SignalModel       `json:"pm10"`
	Connectivity ConnectivityModel `json:"connectivity"`
}

type ConnectivityModel struct {
	TxConnected         bool `json:"txConnected"`         //sensor -> computer
	DirectionChangeNull bool `json:"directionChangeNull"` //Extra null before frame. Breaks 32 byte alignment
	IncompletePackages  bool `json:"incompletePackages"`  //Not all bytes are coming
	InvalidCRC          bool `json:"invalidCRC"`
	IdleCharacters      bool `json:"idleCharacters"` //Random line noise in between frames
}

type SignalModel struct {
	Noise     float64 `json:"noise"` //in range [value-noise, value+noise]
	Offset    float64 `json:"offset"`
	Period    int64   `json:"period"` //In milliseconds, sine period
	Phase     int64   `json:"phase"`  //In milliseconds.
	Amplitude float64 `json:"amplitude"`
}

func (p *SignalModel) Calc(t time.Time) float64 {
	wave := 0.0
	if p.Period != 0 {
		ms := t.UnixNano() / int64(time.Millisecond)
		angle := 2.0 * math.Pi * math.Mod(float64(ms+p.Phase), float64(p.Period)) / float64(p.Period)
		wave = math.Sin(angle) * p.Amplitude
	}
	return math.Max(0, (rand.Float64()*2.0-1.0)*p.Noise+wave+p.Offset)
}

func toReg(v float64) uint16 {
	return uint16(math.Min(math.Round(v), math.MaxUint16))
}

type SimSensor struct {
	Output chan []byte //Writes out burst of bytes

	mu     sync.Mutex
	model  SensorModel
	status SensorModelStatus
}

func InitSimSensor(pm25 float64) *SimSensor {
	return &SimSensor{
		Output: make(chan []byte, 10),
		model: SensorModel{
			PowerOn:      true,
			Version:      0x97,
			PM25:         SignalModel{Offset: pm25, Noise: 2, Period: 10 * 60 * 1000, Amplitude: pm25 / 4},
			PM10:         SignalModel{Offset: pm25 * 1.4, Noise: 3},
			Connectivity: ConnectivityModel{TxConnected: true},
		},
	}
}

func (p *SimSensor) Model() SensorModel {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.model
}

func (p *SimSensor) SetModel(m SensorModel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.model = m
}

func (p *SimSensor) Status() SensorModelStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Frame content by model. Counts are rough scaling from mass, real sensor does opposite
func (p *SimSensor) nextFrame(tNow time.Time) pms5003.Frame {
	pm25 := p.model.PM25.Calc(tNow)
	pm10 := math.Max(pm25, p.model.PM10.Calc(tNow))
	pm1 := pm25 * 0.7

	p.status.PM25Now = toReg(pm25)
	p.status.PM10Now = toReg(pm10)
	data := pms5003.FrameData{
		PM1Standard:  toReg(pm1),
		PM25Standard: p.status.PM25Now,
		PM10Standard: p.status.PM10Now,
		PM1Atm:       toReg(pm1),
		PM25Atm:      p.status.PM25Now,
		PM10Atm:      p.status.PM10Now,
		Version:      p.model.Version,
		ErrorCode:    p.model.ErrorCode,
	}
	data.Counts = [pms5003.NUMBEROFCOUNTBINS]uint16{
		toReg(pm1 * 150), toReg(pm1 * 45), toReg(pm25 * 8), toReg(pm25 * 0.8), toReg(pm10 * 0.2), toReg(pm10 * 0.05),
	}
	return pms5003.NewFrame(data)
}

// Trash signal only if needed
func (p *ConnectivityModel) TrashSignal(frame pms5003.Frame) []byte {
	arr := append([]byte{}, frame[:]...)
	if p.InvalidCRC {
		arr[pms5003.OFFSET_CHECKSUM+1]++
	}
	if p.DirectionChangeNull {
		arr = append([]byte{0}, arr...)
	}
	if p.IncompletePackages { //Cut away from end reciever might keep waiting?
		arr = arr[0 : len(arr)-4]
	}
	return arr
}

// Tick produces bytes for one period. nil when sensor is silent
func (p *SimSensor) Tick(tNow time.Time) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.model.PowerOn || !p.model.Connectivity.TxConnected {
		return nil
	}
	result := []byte{}
	if p.model.Connectivity.IdleCharacters {
		junk := make([]byte, 9)
		for i := range junk {
			junk[i] = byte(rand.Uint32() & 0xFF)
		}
		junk[0] = 0 //never looks like start
		result = append(result, junk...)
		p.status.GarbageCounter++
	}
	result = append(result, p.model.Connectivity.TrashSignal(p.nextFrame(tNow))...)
	p.status.FrameCounter++
	return result
}

// Run sends like sensor in active mode
func (p *SimSensor) Run(interval time.Duration) {
	for {
		out := p.Tick(time.Now())
		if out != nil {
			p.Output <- out
		}
		time.Sleep(interval)
	}
}
