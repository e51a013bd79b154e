//go:build darwin

package mediakey

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa

#import <Cocoa/Cocoa.h>

static void postMediaKey(int key, int down) {
	@autoreleasepool {
		NSUInteger flags = down ? 0xa00 : 0xb00;
		NSInteger data1 = (key << 16) | ((down ? 0xa : 0xb) << 8);
		NSEvent *event = [NSEvent otherEventWithType:NSEventTypeSystemDefined
			location:NSZeroPoint
			modifierFlags:flags
			timestamp:0
			windowNumber:0
			context:nil
			subtype:8
			data1:data1
			data2:-1];
		CGEventPost(kCGHIDEventTap, [event CGEvent]);
	}
}
*/
import "C"

func post(k Key) error {
	C.postMediaKey(C.int(k), 1)
	C.postMediaKey(C.int(k), 0)
	return nil
}
