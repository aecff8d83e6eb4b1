package daystats

import "fmt"

// NetworkError is returned when the dataset could not be fetched. StatusCode
// is zero when the request never produced a response.
type NetworkError struct {
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("failed to load stats: %v", e.Err)
	}
	return fmt.Sprintf("failed to load stats (%d)", e.StatusCode)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// FormatError is returned when the payload does not have the expected shape.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "unexpected data format: " + e.Reason
}
