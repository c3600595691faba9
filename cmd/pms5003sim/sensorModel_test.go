package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pms5003"
)

// Simulator output fed back to reader
type playbackConn struct {
	r *bytes.Reader
}

func (p *playbackConn) Read(buf []byte) (int, error) { return p.r.Read(buf) }
func (p *playbackConn) ResetInput() error           { return nil }
func (p *playbackConn) Close() error                { return nil }

func readBack(t *testing.T, stream []byte) (pms5003.Measurement, error) {
	t.Helper()
	open := func(cfg pms5003.Config) (pms5003.Conn, error) {
		return &playbackConn{r: bytes.NewReader(stream)}, nil
	}
	cfg := pms5003.DefaultConfig()
	cfg.Port = "sim:" + t.Name()
	return pms5003.NewReader(cfg, open).ReadMeasurement()
}

func quietSensor(pm25 float64) *SimSensor {
	sim := InitSimSensor(pm25)
	m := sim.Model()
	m.PM25 = SignalModel{Offset: pm25}
	m.PM10 = SignalModel{Offset: pm25 * 2}
	sim.SetModel(m)
	return sim
}

func TestSignalModel(t *testing.T) {
	flat := SignalModel{Offset: 35}
	assert.Equal(t, 35.0, flat.Calc(time.Now()))

	negative := SignalModel{Offset: -5}
	assert.Equal(t, 0.0, negative.Calc(time.Now()), "concentration can not go negative")

	noisy := SignalModel{Offset: 50, Noise: 5, Period: 1000, Amplitude: 10}
	for i := 0; i < 100; i++ {
		v := noisy.Calc(time.Unix(0, int64(i)*int64(37*time.Millisecond)))
		assert.GreaterOrEqual(t, v, 35.0)
		assert.LessOrEqual(t, v, 65.0)
	}
}

func TestTickReadBack(t *testing.T) {
	sim := quietSensor(123)
	out := sim.Tick(time.Now())
	require.Len(t, out, pms5003.FRAMESIZE)

	var f pms5003.Frame
	copy(f[:], out)
	assert.True(t, f.ChecksumOk())
	d := f.Decode()
	assert.Equal(t, uint16(123), d.PM25Standard)
	assert.Equal(t, uint16(246), d.PM10Standard)
	assert.Equal(t, byte(0x97), d.Version)

	m, err := readBack(t, out)
	require.NoError(t, err)
	assert.Equal(t, uint16(123), m.PM25)
	assert.Equal(t, 1, sim.Status().FrameCounter)
}

func TestTickSilent(t *testing.T) {
	sim := quietSensor(10)
	m := sim.Model()
	m.Connectivity.TxConnected = false
	sim.SetModel(m)
	assert.Nil(t, sim.Tick(time.Now()))

	m.Connectivity.TxConnected = true
	m.PowerOn = false
	sim.SetModel(m)
	assert.Nil(t, sim.Tick(time.Now()))
}

func TestTrashSignal(t *testing.T) {
	frame := pms5003.NewFrame(pms5003.FrameData{PM25Standard: 77})

	crc := ConnectivityModel{InvalidCRC: true}
	bad := crc.TrashSignal(frame)
	require.Len(t, bad, pms5003.FRAMESIZE)
	var f pms5003.Frame
	copy(f[:], bad)
	assert.False(t, f.ChecksumOk())
	assert.True(t, frame.ChecksumOk(), "original frame must stay untouched")

	//Reader does not verify checksum
	m, err := readBack(t, bad)
	require.NoError(t, err)
	assert.Equal(t, uint16(77), m.PM25)

	cut := ConnectivityModel{IncompletePackages: true}
	_, err = readBack(t, cut.TrashSignal(frame))
	var readErr *pms5003.ReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, pms5003.Truncated, readErr.Kind)

	null := ConnectivityModel{DirectionChangeNull: true}
	shifted := null.TrashSignal(frame)
	assert.Len(t, shifted, pms5003.FRAMESIZE+1)
	assert.Equal(t, byte(0), shifted[0])
}

// Line noise shifts 32 byte windows, reader never finds sync and stream ends
func TestIdleCharactersBreakAlignment(t *testing.T) {
	sim := quietSensor(5)
	m := sim.Model()
	m.Connectivity.IdleCharacters = true
	sim.SetModel(m)

	stream := []byte{}
	for i := 0; i < 3; i++ {
		stream = append(stream, sim.Tick(time.Now())...)
	}
	assert.Len(t, stream, 3*(9+pms5003.FRAMESIZE))
	assert.Equal(t, 3, sim.Status().GarbageCounter)

	_, err := readBack(t, stream)
	var readErr *pms5003.ReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, pms5003.Truncated, readErr.Kind)
}

func TestUiModelUpdate(t *testing.T) {
	sim := quietSensor(20)
	server := httptest.NewServer(newUiRouter(sim))
	defer server.Close()

	res, err := http.Get(server.URL + "/model")
	require.NoError(t, err)
	var got SensorModel
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	res.Body.Close()
	assert.Equal(t, 20.0, got.PM25.Offset)

	got.PM25.Offset = 250
	got.ErrorCode = 3
	body, _ := json.Marshal(got)
	res, err = http.Post(server.URL+"/model", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 250.0, sim.Model().PM25.Offset)

	out := sim.Tick(time.Now())
	var f pms5003.Frame
	copy(f[:], out)
	assert.Equal(t, uint16(250), f.PM25())
	assert.Equal(t, byte(3), f.Decode().ErrorCode)

	res, err = http.Post(server.URL+"/model", "application/json", strings.NewReader("{broken"))
	require.NoError(t, err)
	io.Copy(io.Discard, res.Body)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, err = http.Get(server.URL + "/status")
	require.NoError(t, err)
	var status SensorModelStatus
	require.NoError(t, json.NewDecoder(res.Body).Decode(&status))
	res.Body.Close()
	assert.Equal(t, 1, status.FrameCounter)
	assert.Equal(t, uint16(250), status.PM25Now)
}
