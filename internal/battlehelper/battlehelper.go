// Package battlehelper names the external contract a resolved Task's
// ProcessTaskAction ultimately drives: the device controller an
// executor would call click/swipe/image-capture through. Per spec.md §1
// this boundary is out of scope — the catalog never calls any of these
// methods itself — the interface exists only so executor code outside
// this module has a stable seam to implement against.
//
// Grounded on BattleHelper.cpp's ctrler() method set
// (click/swipe/press_escape/get_image/support_swipe_with_pause/sleep/
// need_exit).
package battlehelper

import (
	"context"
	"image"

	"github.com/vk/taskcatalog/internal/tasktype"
)

// Controller is the device-facing contract an executor supplies so that
// a resolved Task's Action can actually be carried out. No
// implementation lives in this module.
type Controller interface {
	// Click performs a tap within rect.
	Click(ctx context.Context, rect tasktype.Rect) error
	// Swipe drags from one rect to another over duration, optionally
	// pausing mid-swipe if the device supports it.
	Swipe(ctx context.Context, from, to tasktype.Rect, durationMS int, withPause bool) error
	// SupportSwipeWithPause reports whether Swipe's withPause argument
	// is honored on this controller.
	SupportSwipeWithPause() bool
	// PressEscape sends the device's escape/back key.
	PressEscape(ctx context.Context) error
	// GetImage captures the current frame.
	GetImage(ctx context.Context) (image.Image, error)
	// Sleep blocks for ms milliseconds, or returns early if ctx is
	// canceled.
	Sleep(ctx context.Context, ms int) error
	// NeedExit reports whether the run loop driving this controller has
	// been asked to stop.
	NeedExit() bool
}
