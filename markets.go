package flightstats

import (
	"github.com/DevOps8012/tutorial-201209-TDWI-big-data/flights"
)

// MarketJob is the flight time statistics job: group flights by year and
// market, then average scheduled, actual and in-air minutes per group.
func MarketJob(inputs []string, outputDir string, reader flights.ReaderConfig) Spec[flights.Record, flights.Key, flights.FlightTimes, flights.Aggregate] {
	return Spec[flights.Record, flights.Key, flights.FlightTimes, flights.Aggregate]{
		Inputs:    inputs,
		OutputDir: outputDir,
		Mapper:    flights.MarketMapper{},
		Reducer:   flights.FlightTimeReducer{},
		Input:     flights.Input(reader),
		Output:    flights.Output(),
	}
}
