// Copyright 2024 The Voxen Authors. All rights reserved.

package driver

import (
	"errors"
	"log"
	"sync"
)

// Driver is the interface that provides methods for
// loading and unloading an underlying implementation.
type Driver interface {
	// Open initializes the driver. If it succeeds, further
	// calls with the same receiver have no effect and must
	// return the same GPU instance. Callers should assume
	// that Open is not safe for parallel execution.
	Open() (GPU, error)

	// Name returns the name of the driver. It must not
	// cause the driver to be opened.
	Name() string

	// Close deinitializes the driver. Closing a driver
	// that is not open has no effect. Callers should
	// assume that Close is not safe for parallel
	// execution.
	Close()
}

// Errors returned by Driver/GPU implementations (§7).
var (
	// ErrNotInstalled means a platform-specific library
	// required for the driver is not present.
	ErrNotInstalled = errors.New("driver: missing required library")

	// ErrNoDevice means no suitable device could be found.
	ErrNoDevice = errors.New("driver: no suitable device found")

	// ErrNoHostMemory means host memory could not be
	// allocated.
	ErrNoHostMemory = errors.New("driver: out of host memory")

	// ErrNoDeviceMemory means device memory could not be
	// allocated.
	ErrNoDeviceMemory = errors.New("driver: out of device memory")

	// ErrFatal means the driver is in an unrecoverable
	// state. The application must destroy everything
	// created from the driver's GPU, then call Close. It
	// may call Open again afterwards.
	ErrFatal = errors.New("driver: fatal error")

	// ErrSwapchain means a swapchain became out of date
	// (e.g. on window resize) and must be recreated.
	ErrSwapchain = errors.New("driver: swapchain out of date")
)

// Drivers returns the registered Drivers.
// Client code imports specific driver packages, which
// call this function from init. Drivers that do not
// register themselves on init are not considered for
// selection.
func Drivers() []Driver {
	mu.Lock()
	defer mu.Unlock()
	drv := make([]Driver, len(drivers))
	copy(drv, drivers)
	return drv
}

// Register registers a Driver. Implementations are
// expected to call Register exactly once, from init. If a
// driver with the same name is already registered, it is
// replaced by drv.
func Register(drv Driver) {
	mu.Lock()
	defer mu.Unlock()
	for i := range drivers {
		if drivers[i].Name() == drv.Name() {
			drivers[i] = drv
			log.Printf("[!] driver %q replaced", drv.Name())
			return
		}
	}
	drivers = append(drivers, drv)
	log.Printf("driver %q registered", drv.Name())
}

var (
	mu      sync.Mutex
	drivers []Driver = make([]Driver, 0, 1)
)
