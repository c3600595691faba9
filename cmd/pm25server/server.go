package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/fxamacker/cbor/v2"
	"github.com/gorilla/mux"
	"pms5003"
)

const CONTENTTYPE_CBOR = "application/cbor"

type measurer interface {
	ReadMeasurement() (pms5003.Measurement, error)
}

type errorDoc struct {
	Error string `json:"error" cbor:"error"`
}

func allowCors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", r.Header.Get("Access-Control-Request-Headers"))
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Sensor failure is reported in body, status stays 200
func writeResult(w http.ResponseWriter, r *http.Request, result interface{}) {
	var body []byte
	var err error
	if strings.Contains(r.Header.Get("Accept"), CONTENTTYPE_CBOR) {
		w.Header().Set("Content-Type", CONTENTTYPE_CBOR)
		body, err = cbor.Marshal(result)
	} else {
		w.Header().Set("Content-Type", "application/json")
		body, err = json.Marshal(result)
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("encoding result failed %v", err.Error()), http.StatusInternalServerError)
		return
	}
	w.Write(body)
}

func pm25Handler(sensor measurer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tStart := time.Now()
		m, err := sensor.ReadMeasurement()
		if err != nil {
			color.Set(color.FgRed)
			fmt.Printf("%v read failed %v (%v)\n", r.RemoteAddr, err.Error(), time.Since(tStart))
			color.Unset()
			writeResult(w, r, errorDoc{Error: err.Error()})
			return
		}
		color.Set(color.FgCyan)
		fmt.Printf("%v %v (%v)\n", r.RemoteAddr, m, time.Since(tStart))
		color.Unset()
		writeResult(w, r, m)
	}
}

func newRouter(sensor measurer, staticDir string) *mux.Router {
	r := mux.NewRouter()
	r.Use(allowCors)
	r.HandleFunc("/api/pm25", pm25Handler(sensor)).Methods(http.MethodGet, http.MethodOptions)
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
	return r
}
