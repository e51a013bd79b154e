//go:build darwin

package notify

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Foundation -framework CoreFoundation

#include <stdlib.h>
#include "distributed_darwin.h"
*/
import "C"
import (
	"context"
	"log/slog"
	"sync"
	"unsafe"

	"github.com/marcus-crane/tunestatus/shared"
)

var (
	registerOnce sync.Once
	mu           sync.RWMutex
	sink         *Distributed
)

//export goDistributedNotification
func goDistributedNotification(name *C.char, payload *C.char) {
	mu.RLock()
	d := sink
	mu.RUnlock()
	if d == nil {
		return
	}
	d.deliver(C.GoString(name), []byte(C.GoString(payload)))
}

// Start registers the observers for Music and Spotify. Deliveries happen on
// the main queue, so the main thread must be running a run loop, either
// the tray's or RunMainLoop.
func (d *Distributed) Start(ctx context.Context) error {
	mu.Lock()
	d.ctx = ctx
	sink = d
	mu.Unlock()

	registerOnce.Do(func() {
		for _, name := range []string{shared.NOTIFICATION_MUSIC, shared.NOTIFICATION_SPOTIFY} {
			cName := C.CString(name)
			C.ObserveDistributedNotification(cName)
			C.free(unsafe.Pointer(cName))
		}
	})
	slog.Info("Listening for distributed notifications")
	return nil
}

// RunMainLoop services the main run loop until ctx is done. It must be
// called from the main goroutine with the OS thread locked.
func RunMainLoop(ctx context.Context) {
	for ctx.Err() == nil {
		C.RunMainLoopOnce(C.double(0.25))
	}
}
