package elevation

import "fmt"

// A TileFetchError is returned when a tile cannot be retrieved or parsed.
type TileFetchError struct {
	TileKey TileKey
	Err     error
}

func (e *TileFetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.TileKey, e.Err)
}

func (e *TileFetchError) Unwrap() error {
	return e.Err
}

// A MalformedCoordinateError is returned when a coordinate pair cannot be
// parsed.
type MalformedCoordinateError struct {
	Index int
	Text  string
	Err   error
}

func (e *MalformedCoordinateError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("coordinate %d: %q: malformed", e.Index, e.Text)
	}
	return fmt.Sprintf("coordinate %d: %q: %v", e.Index, e.Text, e.Err)
}

func (e *MalformedCoordinateError) Unwrap() error {
	return e.Err
}
