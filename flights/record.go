// Package flights implements the flight-time statistics job: the on-time
// performance record schema, delimited input parsing, the market mapper,
// the flight-time reducer and the aggregate output format.
package flights

// Columns lists the dataset's column labels in file order. Input lines
// bind to Record fields positionally against this schema.
var Columns = []string{
	"Year", "Month", "DayofMonth", "DayOfWeek",
	"DepTime", "CRSDepTime", "ArrTime", "CRSArrTime",
	"UniqueCarrier", "FlightNum", "TailNum",
	"ActualElapsedTime", "CRSElapsedTime", "AirTime",
	"ArrDelay", "DepDelay", "Origin", "Dest", "Distance",
	"TaxiIn", "TaxiOut", "Cancelled", "CancellationCode", "Diverted",
	"CarrierDelay", "WeatherDelay", "NASDelay", "SecurityDelay",
	"LateAircraftDelay",
}

// FieldCount is the number of fields a line must carry to bind.
const FieldCount = 29

// Record is one row of the on-time performance table. Every field holds
// the raw text of its column; interpretation happens in the mapper so a
// malformed value never fails parsing, only aggregation of that value.
type Record struct {
	Year              string
	Month             string
	DayOfMonth        string
	DayOfWeek         string
	DepTime           string
	CRSDepTime        string
	ArrTime           string
	CRSArrTime        string
	UniqueCarrier     string
	FlightNum         string
	TailNum           string
	ActualElapsedTime string
	CRSElapsedTime    string
	AirTime           string
	ArrDelay          string
	DepDelay          string
	Origin            string
	Dest              string
	Distance          string
	TaxiIn            string
	TaxiOut           string
	Cancelled         string
	CancellationCode  string
	Diverted          string
	CarrierDelay      string
	WeatherDelay      string
	NASDelay          string
	SecurityDelay     string
	LateAircraftDelay string
}

func bindRecord(fields []string) Record {
	return Record{
		Year:              fields[0],
		Month:             fields[1],
		DayOfMonth:        fields[2],
		DayOfWeek:         fields[3],
		DepTime:           fields[4],
		CRSDepTime:        fields[5],
		ArrTime:           fields[6],
		CRSArrTime:        fields[7],
		UniqueCarrier:     fields[8],
		FlightNum:         fields[9],
		TailNum:           fields[10],
		ActualElapsedTime: fields[11],
		CRSElapsedTime:    fields[12],
		AirTime:           fields[13],
		ArrDelay:          fields[14],
		DepDelay:          fields[15],
		Origin:            fields[16],
		Dest:              fields[17],
		Distance:          fields[18],
		TaxiIn:            fields[19],
		TaxiOut:           fields[20],
		Cancelled:         fields[21],
		CancellationCode:  fields[22],
		Diverted:          fields[23],
		CarrierDelay:      fields[24],
		WeatherDelay:      fields[25],
		NASDelay:          fields[26],
		SecurityDelay:     fields[27],
		LateAircraftDelay: fields[28],
	}
}
