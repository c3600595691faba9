/*
Simple command line reader for single Plantower sensor

Without serial device lists serial ports found on system
*/

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/hjkoskel/listserialports"
	"pms5003"
)

type cliSettings struct {
	Humidity float64 //Negative = no compensation
	Verbose  bool
}

func printMeasurement(reader *pms5003.Reader, settings cliSettings) error {
	frame, tCapture, errRead := reader.ReadFrame()
	if errRead != nil {
		return errRead
	}
	m := pms5003.MeasurementFromFrame(frame, tCapture)

	color.Set(color.FgHiYellow)
	fmt.Printf("%v", m)
	if 0 <= settings.Humidity {
		fmt.Printf(" compensated %.1fµg/m³ (RH %.0f%%)", pms5003.NormalizePM25(float64(m.PM25), settings.Humidity), settings.Humidity)
	}
	fmt.Printf("\n")
	color.Unset()

	if settings.Verbose {
		fmt.Printf("%v\n", frame.String())
		fmt.Print(frame.DebugText())
	}
	return nil
}

func printError(err error) {
	color.Set(color.FgHiRed)
	fmt.Printf("ERR=%v\n", err.Error())
	color.Unset()
}

func main() {
	defaults := pms5003.DefaultConfig()
	pSerialDevice := flag.String("s", "", "serial device file")
	pBaud := flag.Int("b", defaults.BaudRate, "baud rate")
	pTimeout := flag.Duration("t", defaults.Timeout, "timeout for single serial read")
	pDriver := flag.String("driver", defaults.Driver, "serial driver termios or bugst")
	pCount := flag.Int("n", 1, "number of measurements, 0=forever")
	pPause := flag.Duration("p", time.Second, "pause between measurements")
	pHumidity := flag.Float64("rh", -1, "relative humidity for compensation, negative=off")
	pVerbose := flag.Bool("v", false, "print whole frame")
	pInteractive := flag.Bool("i", false, "interactive mode")
	flag.Parse()

	serialDeviceFileName := *pSerialDevice
	if serialDeviceFileName == "" {
		fmt.Printf("Please define serial device. (-h for help)\nList of serial ports\n")
		proped, _ := listserialports.Probe(false)
		for _, ser := range proped {
			fmt.Print(ser.ToPrintoutFormat())
		}
		os.Exit(0)
	}

	cfg := pms5003.Config{
		Port:     serialDeviceFileName,
		BaudRate: *pBaud,
		Timeout:  *pTimeout,
		Driver:   *pDriver,
	}
	if errCfg := cfg.Validate(); errCfg != nil {
		printError(errCfg)
		os.Exit(-1)
	}
	reader := pms5003.NewReader(cfg, nil)
	settings := cliSettings{Humidity: *pHumidity, Verbose: *pVerbose}

	if *pInteractive {
		if err := interactiveMode(reader, settings); err != nil {
			printError(err)
			os.Exit(-1)
		}
		return
	}

	failed := false
	for i := 0; *pCount == 0 || i < *pCount; i++ {
		if 0 < i {
			time.Sleep(*pPause)
		}
		if err := printMeasurement(reader, settings); err != nil {
			printError(err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
