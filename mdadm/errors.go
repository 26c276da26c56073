package mdadm

import (
	"errors"
	"fmt"

	"github.com/mit-pdos/go-jbod/jbod"
)

var (
	ErrNotMounted       = errors.New("mdadm: not mounted")
	ErrAlreadyMounted   = errors.New("mdadm: already mounted")
	ErrAlreadyUnmounted = errors.New("mdadm: already unmounted")
	ErrPermissionDenied = errors.New("mdadm: write permission not granted")
	ErrLengthTooLarge   = errors.New("mdadm: length exceeds request limit")
	ErrNullBuffer       = errors.New("mdadm: nil buffer")
	ErrShortBuffer      = errors.New("mdadm: buffer shorter than length")
	ErrOutOfRange       = errors.New("mdadm: range outside volume")
	ErrDevice           = errors.New("mdadm: device error")
)

// DeviceError is returned when the array rejects an operation. It matches
// ErrDevice and unwraps to the array's error.
type DeviceError struct {
	Op  jbod.Op
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("mdadm: %v: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

func (e *DeviceError) Is(target error) bool {
	return target == ErrDevice
}
