package entity

// DriverStatus is what the driver directory knows about a driver's availability.
// An unknown driver has the zero value and is never eligible.
type DriverStatus struct {
	Available bool
	Verified  bool
}

func (s DriverStatus) Eligible() bool {
	return s.Available && s.Verified
}
