package flights

// Aggregate is the statistics row for one (year, market) group.
type Aggregate struct {
	Key     Key
	Flights int

	// Means over the values present in the group. Nil means the group had
	// no values at all for that field.
	Scheduled *float64
	Actual    *float64
	Air       *float64
}

// FlightTimeReducer folds the flight times of one group into a count and
// three means. Each mean is taken over the values present for that field
// only; records missing the field still count as flights but contribute
// nothing to the mean. A field missing from every record leaves the mean
// undefined rather than zero.
type FlightTimeReducer struct{}

func (FlightTimeReducer) Reduce(key Key, values []FlightTimes) Aggregate {
	return Aggregate{
		Key:       key,
		Flights:   len(values),
		Scheduled: mean(values, func(t FlightTimes) *float64 { return t.Scheduled }),
		Actual:    mean(values, func(t FlightTimes) *float64 { return t.Actual }),
		Air:       mean(values, func(t FlightTimes) *float64 { return t.Air }),
	}
}

func mean(values []FlightTimes, field func(FlightTimes) *float64) *float64 {
	sum := 0.0
	n := 0
	for _, t := range values {
		if p := field(t); p != nil {
			sum += *p
			n++
		}
	}
	if n == 0 {
		return nil
	}
	m := sum / float64(n)
	return &m
}
