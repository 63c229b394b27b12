// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var testEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeNowAdvance(t *testing.T) {
	t.Parallel()

	fakeClock := Fake(testEpoch)
	if got := fakeClock.Now(); !got.Equal(testEpoch) {
		t.Errorf("Now() = %v, want %v", got, testEpoch)
	}

	fakeClock.Advance(90 * time.Second)
	want := testEpoch.Add(90 * time.Second)
	if got := fakeClock.Now(); !got.Equal(want) {
		t.Errorf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestFakeAfterFiresOnAdvance(t *testing.T) {
	t.Parallel()

	fakeClock := Fake(testEpoch)
	ch := fakeClock.After(time.Minute)

	select {
	case <-ch:
		t.Fatal("After fired before Advance")
	default:
	}

	fakeClock.Advance(time.Minute)
	select {
	case fired := <-ch:
		if !fired.Equal(testEpoch.Add(time.Minute)) {
			t.Errorf("fire time = %v, want %v", fired, testEpoch.Add(time.Minute))
		}
	default:
		t.Fatal("After did not fire after Advance")
	}
}

func TestFakeAfterNonPositiveFiresImmediately(t *testing.T) {
	t.Parallel()

	fakeClock := Fake(testEpoch)
	select {
	case <-fakeClock.After(0):
	default:
		t.Fatal("After(0) did not fire immediately")
	}
}

func TestFakeTickerFiresPerInterval(t *testing.T) {
	t.Parallel()

	fakeClock := Fake(testEpoch)
	ticker := fakeClock.NewTicker(time.Minute)
	defer ticker.Stop()

	fakeClock.Advance(time.Minute)
	select {
	case <-ticker.C:
	default:
		t.Fatal("ticker did not fire after one interval")
	}

	// The channel has capacity 1: a multi-interval advance delivers at
	// most one buffered tick.
	fakeClock.Advance(3 * time.Minute)
	select {
	case <-ticker.C:
	default:
		t.Fatal("ticker did not fire after multi-interval advance")
	}
}

func TestFakeTickerStop(t *testing.T) {
	t.Parallel()

	fakeClock := Fake(testEpoch)
	ticker := fakeClock.NewTicker(time.Minute)
	ticker.Stop()

	fakeClock.Advance(5 * time.Minute)
	select {
	case <-ticker.C:
		t.Fatal("stopped ticker fired")
	default:
	}
	if count := fakeClock.PendingCount(); count != 0 {
		t.Errorf("PendingCount() = %d, want 0", count)
	}
}

func TestFakeWaitForTimers(t *testing.T) {
	t.Parallel()

	fakeClock := Fake(testEpoch)
	done := make(chan struct{})
	go func() {
		fakeClock.Sleep(time.Hour)
		close(done)
	}()

	fakeClock.WaitForTimers(1)
	fakeClock.Advance(time.Hour)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Sleep did not return after Advance")
	}
}
