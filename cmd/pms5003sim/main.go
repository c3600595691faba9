/*
Plantower sensor simulator

Writes frames to serial device once per second like sensor on active mode.
Pair with reader using socat
  socat -d -d pty,raw,echo=0 pty,raw,echo=0
*/

package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/hjkoskel/listserialports"
	"pms5003"
)

func main() {
	fmt.Printf("Single sensor PMS5003 SIM\n")

	defaults := pms5003.DefaultConfig()
	pSerialDevice := flag.String("s", "", "serial device file")
	pBaud := flag.Int("b", defaults.BaudRate, "baud rate")
	pUiport := flag.Int("uiport", 8088, "Port for model ui, 0=off")
	pPm25 := flag.Float64("pm25", 12, "PM2.5 level to simulate µg/m³")
	pInterval := flag.Duration("interval", time.Second, "frame interval")
	flag.Parse()

	if *pSerialDevice == "" {
		fmt.Printf("Please define serial device. (-h for help)\nList of serial ports\n")
		proped, errProbing := listserialports.Probe(false)
		if errProbing != nil {
			fmt.Printf("Error probing serial port %v", errProbing.Error())
			os.Exit(-1)
		}
		for _, ser := range proped {
			fmt.Print(ser.ToPrintoutFormat())
		}
		os.Exit(0)
	}

	cfg := defaults
	cfg.Port = *pSerialDevice
	cfg.BaudRate = *pBaud
	cfg.Driver = pms5003.DRIVER_BUGST
	port, errOpen := pms5003.OpenBugstSerial(cfg)
	if errOpen != nil {
		fmt.Printf("SERIAL LINK FAIL %v\n", errOpen.Error())
		os.Exit(-1)
	}
	defer port.Close()

	simsensor := InitSimSensor(*pPm25)
	fmt.Printf("sim=%#v\n", simsensor.Model())

	go func() {
		for {
			bytArr := <-simsensor.Output

			color.Set(color.FgCyan)
			fmt.Printf("to serial: %X\n", bytArr)
			color.Unset()

			n, errWrite := port.Write(bytArr) //Should write all in one pass
			if errWrite != nil {
				color.Set(color.FgRed)
				fmt.Printf("Error writing %v\n", errWrite.Error())
				color.Unset()
			} else if n != len(bytArr) {
				fmt.Printf("non complete write, got %v wrote only %v\n", len(bytArr), n)
			}
		}
	}()

	if *pUiport == 0 {
		simsensor.Run(*pInterval)
		return
	}

	go simsensor.Run(*pInterval)
	fmt.Printf("\n\nServing model ui on port %v\n", *pUiport)
	errRun := http.ListenAndServe(fmt.Sprintf(":%v", *pUiport), newUiRouter(simsensor))
	fmt.Printf("UI server failed %v\n", errRun.Error())
	os.Exit(-1)
}
