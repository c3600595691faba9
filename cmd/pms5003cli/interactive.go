package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/term"
	"pms5003"
)

func printInteractiveHelp() {
	fmt.Printf("---- Interactive commands ----\n")
	fmt.Printf("r = read measurement\n")
	fmt.Printf("v = toggle verbose frame dump\n")
	fmt.Printf("c = toggle humidity compensation\n")
	fmt.Printf("t = status of settings now\n")
	fmt.Printf("h = print this help\n")
	fmt.Printf("q = quit\n")
}

func getch() []byte {
	t, errOpen := term.Open("/dev/tty")
	if errOpen != nil {
		return nil
	}
	term.RawMode(t)
	bytes := make([]byte, 3)
	numRead, err := t.Read(bytes)
	t.Restore()
	t.Close()
	if err != nil {
		return nil
	}
	return bytes[0:numRead]
}

func readHumidity() (float64, error) {
	fmt.Print("relative humidity %: ")
	line := ""
	for {
		c := getch()
		if len(c) == 0 || c[0] == '\r' || c[0] == '\n' {
			break
		}
		fmt.Printf("%s", c)
		line += string(c)
	}
	fmt.Printf("\n")
	rh, errParse := strconv.ParseFloat(strings.TrimSpace(line), 64)
	if errParse != nil {
		return -1, fmt.Errorf("invalid numerical input %v", errParse.Error())
	}
	if rh < 0 || 100 < rh {
		return -1, fmt.Errorf("value %v out of range from 0-100 allowed", rh)
	}
	return rh, nil
}

// This have colors :)
func interactiveMode(reader *pms5003.Reader, settings cliSettings) error {
	printInteractiveHelp()
	for {
		c := getch()
		if c == nil {
			return fmt.Errorf("terminal not available")
		}
		switch strings.ToLower(string(c[0:1])) {
		case "r":
			if err := printMeasurement(reader, settings); err != nil {
				printError(err)
			}
		case "v":
			settings.Verbose = !settings.Verbose
			fmt.Printf("verbose=%v\n", settings.Verbose)
		case "c":
			if 0 <= settings.Humidity {
				settings.Humidity = -1
				fmt.Printf("compensation off\n")
				break
			}
			rh, errRh := readHumidity()
			if errRh != nil {
				printError(errRh)
				break
			}
			settings.Humidity = rh
		case "t":
			color.Set(color.FgGreen)
			fmt.Printf("config %#v\nsettings %#v\n", reader.Config(), settings)
			color.Unset()
		case "h":
			printInteractiveHelp()
		case "q":
			return nil
		}
	}
}
