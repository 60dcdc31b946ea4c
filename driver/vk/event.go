// Copyright 2024 The Voxen Authors. All rights reserved.

package vk

import (
	"context"
	"time"

	vkc "github.com/goki/vulkan"

	"github.com/voxen-engine/voxen/driver"
)

const eventPollInterval = 2 * time.Millisecond

// Event implements driver.Event over a Vulkan timeline
// semaphore. Binary semaphores are not exposed: every Event
// in this package carries a monotonically increasing value,
// which is all the CmdBuffer synchronization methods need.
type Event struct {
	gpu *GPU
	vk  vkc.Semaphore
}

func (e *Event) Destroy() { vkc.DestroySemaphore(e.gpu.dev, e.vk, nil) }

func (e *Event) Value() (uint64, error) {
	var v uint64
	if res := vkc.GetSemaphoreCounterValue(e.gpu.dev, e.vk, &v); res != vkc.Success {
		return 0, newVkErr("get semaphore counter value", res)
	}
	return v, nil
}

// Wait polls the semaphore's counter value until it reaches
// at least value, or until done fires.
func (e *Event) Wait(value uint64, done <-chan struct{}) error {
	ctx := context.Background()
	if done != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		go func() {
			select {
			case <-done:
				cancel()
			case <-ctx.Done():
			}
		}()
	}
	t := time.NewTicker(eventPollInterval)
	defer t.Stop()
	for {
		v, err := e.Value()
		if err != nil {
			return err
		}
		if v >= value {
			return nil
		}
		select {
		case <-ctx.Done():
			return driver.ErrFatal
		case <-t.C:
		}
	}
}
