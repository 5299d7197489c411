package models

// Status is the booking state of a field.
type Status string

const (
	StatusAvailable        Status = "Available"
	StatusUnderMaintenance Status = "Under Maintenance"
	StatusBooked           Status = "Booked"
)

// Statuses returns the allowed values in display order.
func Statuses() []string {
	return []string{
		string(StatusAvailable),
		string(StatusUnderMaintenance),
		string(StatusBooked),
	}
}

// Valid reports whether s is one of the allowed values.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusUnderMaintenance, StatusBooked:
		return true
	}
	return false
}
