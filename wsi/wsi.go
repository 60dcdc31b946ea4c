// Copyright 2024 The Voxen Authors. All rights reserved.

// Package wsi defines the window-system-integration surface
// that a driver.Presenter needs to create a swapchain.
//
// Windowing, input and the OS event loop are out of scope
// here; Window is specified only as the external-collaborator
// interface that the renderer's onscreen path is driven
// against. A real implementation (GLFW, xcb, Win32, ...) is
// expected to satisfy it.
package wsi

// Window is the interface that defines a drawable window:
// a surface a GPU can present into.
type Window interface {
	// Width returns the window's current width, in pixels.
	Width() int

	// Height returns the window's current height, in
	// pixels.
	Height() int

	// Handle returns the platform-specific native handle
	// (e.g., HWND, xcb_window_t, NSWindow*) that a
	// driver.Presenter implementation needs to create a
	// surface. Its concrete type is platform-defined.
	Handle() any
}
