package led

import "errors"

var (
	ErrLength = errors.New("led: rgb length does not match pixel count")
	ErrClosed = errors.New("led: driver closed")
)

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes an RGB frame to hardware. len(rgb) must be 3*N. rgb is
	// only valid for the duration of the call.
	Write(rgb []byte) error
	// Close releases resources.
	Close() error
}

// Multi fans every frame out to several drivers.
type Multi []Driver

func (m Multi) Write(rgb []byte) error {
	var errs []error
	for _, d := range m {
		if err := d.Write(rgb); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, d := range m {
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
