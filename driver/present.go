// Copyright 2024 The Voxen Authors. All rights reserved.

package driver

import (
	"errors"

	"github.com/voxen-engine/voxen/wsi"
)

// Errors related to presentation (C9).
var (
	// ErrCannotPresent means the driver/device does not
	// support presentation.
	ErrCannotPresent = errors.New("driver: presentation not supported")

	// ErrWindow means a window misconfiguration is
	// preventing correct operation.
	ErrWindow = errors.New("driver: window-related error")

	// ErrCompositor means compositor behavior is
	// preventing correct operation.
	ErrCompositor = errors.New("driver: compositor-related error")

	// ErrNoBackbuffer means all available backbuffers are
	// acquired. Backbuffers are released on presentation.
	ErrNoBackbuffer = errors.New("driver: all backbuffers in use")
)

// Presenter is the interface a GPU may implement to
// enable presentation on a display.
type Presenter interface {
	// NewSwapchain creates a new swapchain. Only one
	// swapchain can be associated with a given wsi.Window
	// at a time.
	NewSwapchain(win wsi.Window, imageCount int) (Swapchain, error)
}

// Swapchain is the interface that defines an n-buffered
// swapchain for presentation (C9). Presentation, like
// commands, only takes effect once the command buffers
// that reference it are submitted. The usual sequence is:
// call Next, record a render pass targeting the returned
// view, call Present, then submit. Only one Next/Present
// pair may target a single submission batch.
type Swapchain interface {
	Destroyer

	// Views returns the swapchain's image views. Stable
	// until Destroy or Recreate is called.
	Views() []ImageView

	// Next returns the index of the next writable image
	// view. cb must be the first command buffer to access
	// the image.
	Next(cb CmdBuffer) (int, error)

	// Present presents the image view identified by index.
	// cb must be the last command buffer to write to it.
	Present(index int, cb CmdBuffer) error

	// Recreate recreates the swapchain, e.g. in response
	// to ErrSwapchain.
	Recreate() error

	// Format returns the image views' pixel format.
	Format() PixelFmt
}
