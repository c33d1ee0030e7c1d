package raster

import (
	"errors"
	"fmt"
)

var (
	ErrMissingBand   = errors.New("missing band")
	ErrInvalidConfig = errors.New("invalid config")
	ErrGridMismatch  = errors.New("grid mismatch")
	ErrGeometry      = errors.New("invalid geometry")
)

// MissingBandError names a band (or index layer) that a requested computation needs.
type MissingBandError struct {
	Band  string
	Index string
}

func (e *MissingBandError) Error() string {
	return fmt.Sprintf("missing band %q required by %s", e.Band, e.Index)
}

func (e *MissingBandError) Is(target error) bool {
	return target == ErrMissingBand
}

type InvalidConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// GridMismatchError reports two co-inputs that are not co-registered.
type GridMismatchError struct {
	What  string
	Left  string
	Right string
}

func (e *GridMismatchError) Error() string {
	return fmt.Sprintf("%s mismatch: %s vs %s", e.What, e.Left, e.Right)
}

func (e *GridMismatchError) Is(target error) bool {
	return target == ErrGridMismatch
}

type GeometryError struct {
	ZoneID string
	Reason string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("zone %q: %s", e.ZoneID, e.Reason)
}

func (e *GeometryError) Is(target error) bool {
	return target == ErrGeometry
}
