package timeentry

import "fmt"

// ValidateLogInput checks the time span of a new entry.
func ValidateLogInput(req LogRequest) error {
	if req.EndTime <= req.StartTime {
		return fmt.Errorf("%w: end %d is not after start %d", ErrInvalidTimeRange, req.EndTime, req.StartTime)
	}
	return nil
}

// Duration returns the length of a validated span.
func Duration(start, end uint64) uint64 {
	return end - start
}
