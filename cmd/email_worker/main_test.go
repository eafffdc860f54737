package main

import (
	"os"
	"testing"
	"time"
)

func TestAwaitExitOnClosedDeliveries(t *testing.T) {
	stop := make(chan os.Signal, 1)
	done := make(chan struct{})
	close(done)

	exited := make(chan struct{})
	go func() {
		awaitExit(stop, done, time.Second)
		close(exited)
	}()

	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("worker kept waiting after the consume loop ended")
	}
}

func TestAwaitExitOnSignal(t *testing.T) {
	stop := make(chan os.Signal, 1)
	done := make(chan struct{})
	stop <- os.Interrupt

	exited := make(chan struct{})
	go func() {
		awaitExit(stop, done, 10*time.Millisecond)
		close(exited)
	}()

	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on signal")
	}
}
