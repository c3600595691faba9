/*
PM2.5 server

Every GET /api/pm25 reads one fresh frame from sensor and reports it as json
Landing page and other static files are served from -static directory
*/

package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"pms5003"
)

func main() {
	defaults := pms5003.DefaultConfig()
	pSerialDevice := flag.String("s", defaults.Port, "serial device file")
	pBaud := flag.Int("b", defaults.BaudRate, "baud rate")
	pTimeout := flag.Duration("t", defaults.Timeout, "timeout for single serial read")
	pDriver := flag.String("driver", defaults.Driver, "serial driver termios or bugst")
	pListen := flag.String("listen", "0.0.0.0:5000", "http listen address")
	pStatic := flag.String("static", "./static", "directory for landing page")
	flag.Parse()

	cfg := pms5003.Config{
		Port:     *pSerialDevice,
		BaudRate: *pBaud,
		Timeout:  *pTimeout,
		Driver:   *pDriver,
	}
	if errCfg := cfg.Validate(); errCfg != nil {
		color.Set(color.FgRed)
		fmt.Printf("invalid settings %v\n", errCfg.Error())
		color.Unset()
		os.Exit(-1)
	}

	sensor := pms5003.NewReader(cfg, nil)
	srv := &http.Server{
		Addr:              *pListen,
		Handler:           newRouter(sensor, *pStatic),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Printf("Reading %v (%v baud, %v driver), serving on %v\n", cfg.Port, cfg.BaudRate, cfg.Driver, *pListen)
	errRun := srv.ListenAndServe()
	color.Set(color.FgRed)
	fmt.Printf("server failed %v\n", errRun.Error())
	color.Unset()
	os.Exit(-1)
}
