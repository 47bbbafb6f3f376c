package engine

import "errors"

// ErrDeviceLost is returned (wrapped) by the frame loop when a frame's
// device-lost recovery itself fails (spec.md §7, §8 S6). A device loss that
// recovers successfully is logged, not returned, since the whole point of
// S6 is that the engine resumes at the next frame without the caller having
// to handle anything.
var ErrDeviceLost = errors.New("engine: device lost")
