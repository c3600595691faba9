package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"pms5003"
)

type fakeSensor struct {
	m     pms5003.Measurement
	err   error
	calls int
}

func (p *fakeSensor) ReadMeasurement() (pms5003.Measurement, error) {
	p.calls++
	return p.m, p.err
}

func newTestServer(t *testing.T, sensor measurer) *httptest.Server {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>pm25</html>"), 0644); err != nil {
		t.Fatal(err)
	}
	server := httptest.NewServer(newRouter(sensor, dir))
	t.Cleanup(server.Close)
	return server
}

func get(t *testing.T, url string, accept string) (*http.Response, []byte) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}
	return res, body
}

func TestPM25Json(t *testing.T) {
	sensor := &fakeSensor{m: pms5003.Measurement{PM25: 300, Timestamp: time.Date(2024, 3, 5, 14, 7, 9, 0, time.Local)}}
	server := newTestServer(t, sensor)

	res, body := get(t, server.URL+"/api/pm25", "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code %d", res.StatusCode)
	}
	if expected := `{"pm25":300,"timestamp":"2024-03-05 14:07:09"}`; string(body) != expected {
		t.Errorf("expected body %s, got %s", expected, body)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected json content type, got %q", ct)
	}
	if origin := res.Header.Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("expected CORS header, got %q", origin)
	}
	if sensor.calls != 1 {
		t.Errorf("expected one sensor read per request, got %v", sensor.calls)
	}
}

func TestPM25ErrorIsStatusOk(t *testing.T) {
	sensor := &fakeSensor{err: &pms5003.ReadError{Kind: pms5003.Timeout, Err: errors.New("serial read timeout")}}
	server := newTestServer(t, sensor)

	res, body := get(t, server.URL+"/api/pm25", "")
	if res.StatusCode != http.StatusOK {
		t.Errorf("expected status 200 on sensor failure, got %d", res.StatusCode)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatal(err)
	}
	if doc["error"] != "timeout: serial read timeout" {
		t.Errorf("unexpected error body %s", body)
	}
	if _, has := doc["pm25"]; has {
		t.Errorf("error response must not carry pm25 %s", body)
	}
}

func TestPM25Cbor(t *testing.T) {
	sensor := &fakeSensor{m: pms5003.Measurement{PM25: 17, Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)}}
	server := newTestServer(t, sensor)

	res, body := get(t, server.URL+"/api/pm25", CONTENTTYPE_CBOR)
	if ct := res.Header.Get("Content-Type"); ct != CONTENTTYPE_CBOR {
		t.Errorf("expected cbor content type, got %q", ct)
	}
	var doc struct {
		PM25      uint16 `cbor:"pm25"`
		Timestamp string `cbor:"timestamp"`
	}
	if err := cbor.Unmarshal(body, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.PM25 != 17 || doc.Timestamp != "2024-01-02 03:04:05" {
		t.Errorf("unexpected cbor document %#v", doc)
	}
}

func TestCorsPreflight(t *testing.T) {
	sensor := &fakeSensor{}
	server := newTestServer(t, sensor)

	req, _ := http.NewRequest(http.MethodOptions, server.URL+"/api/pm25", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204 on preflight, got %d", res.StatusCode)
	}
	if res.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("preflight missing allow origin")
	}
	if sensor.calls != 0 {
		t.Errorf("preflight must not read sensor")
	}
}

func TestStaticLandingPage(t *testing.T) {
	server := newTestServer(t, &fakeSensor{})
	res, body := get(t, server.URL+"/", "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code %d", res.StatusCode)
	}
	if string(body) != "<html>pm25</html>" {
		t.Errorf("unexpected landing page %s", body)
	}
}
