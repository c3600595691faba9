/*
Empirical humidity compensation for laser particle counters.
Sensor counts also water droplets, readings go up on humid air.
Equations are collection from internet, not verified against reference instrument
*/

package pms5003

import "math"

func clampHumidity(rh float64) float64 {
	return math.Min(100, math.Max(0, rh))
}

/*
From
https://github.com/piotrkpaul/esp8266-sds011
*/
func NormalizePM25(pm25 float64, humidity float64) float64 {
	return pm25 / (1.0 + 0.48756*math.Pow(clampHumidity(humidity)/100.0, 8.60068))
}

func NormalizePM10(pm10 float64, humidity float64) float64 {
	return pm10 / (1.0 + 0.81559*math.Pow(clampHumidity(humidity)/100.0, 5.83411))
}
