// Package mediakey synthesizes the hardware media keys so whichever app
// currently owns them reacts, without knowing which app that is.
package mediakey

import (
	"errors"
	"fmt"
)

type Key int

// Values match NX_KEYTYPE_* from IOKit's ev_keymap.h.
const (
	PlayPause Key = 16
	Next      Key = 17
	Previous  Key = 18
)

var ErrUnsupported = errors.New("media keys are not supported on this platform")

func (k Key) String() string {
	switch k {
	case PlayPause:
		return "play"
	case Next:
		return "next"
	case Previous:
		return "previous"
	}
	return fmt.Sprintf("key(%d)", int(k))
}

// Press sends a key down followed by a key up.
func Press(k Key) error {
	switch k {
	case PlayPause, Next, Previous:
	default:
		return fmt.Errorf("unknown media key %d", int(k))
	}
	return post(k)
}
