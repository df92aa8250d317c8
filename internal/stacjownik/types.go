package stacjownik

// DriverInfo is the subset of /api/getDriverInfo the warner reads.
type DriverInfo struct {
	Sum DriverSum `json:"_sum"`
}

// DriverSum aggregates a driver's history. CurrentDistance is nil when the
// service has no record.
type DriverSum struct {
	CurrentDistance *float64 `json:"currentDistance"`
}

// Distance returns the driven distance in km and whether it is known.
func (d DriverInfo) Distance() (float64, bool) {
	if d.Sum.CurrentDistance == nil {
		return 0, false
	}
	return *d.Sum.CurrentDistance, true
}
