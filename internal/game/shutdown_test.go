package game

import (
	"reflect"
	"testing"
	"time"
)

func TestShutdownRunsStepsInReverse(t *testing.T) {
	s := NewShutdown()
	var order []string
	for _, name := range []string{"log", "glfw", "device", "resources", "session"} {
		s.Defer(func() { order = append(order, name) })
	}
	s.Run()
	s.Run()

	want := []string{"session", "resources", "device", "glfw", "log"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
}

func TestInterruptOnlyRequestsStop(t *testing.T) {
	s := NewShutdown()
	ran := make(chan struct{}, 1)
	s.Defer(func() { ran <- struct{}{} })
	requested := make(chan struct{}, 1)
	s.OnInterrupt(func() { requested <- struct{}{} })

	returned := make(chan struct{})
	go func() {
		s.Interrupt()
		close(returned)
	}()

	select {
	case <-requested:
	case <-time.After(time.Second):
		t.Fatal("interrupt did not request a stop")
	}
	select {
	case <-ran:
		t.Fatal("interrupt ran teardown itself")
	case <-returned:
		t.Fatal("interrupt returned before teardown")
	case <-time.After(20 * time.Millisecond):
	}

	s.Run()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("interrupt still waiting after teardown")
	}
	if len(ran) != 1 {
		t.Fatal("teardown step did not run")
	}
}

func TestInterruptAfterTeardownSkipsRequest(t *testing.T) {
	s := NewShutdown()
	s.OnInterrupt(func() { t.Error("request fired after teardown") })
	s.Run()
	s.Interrupt()
}

func TestInterruptBeforeLoopReturns(t *testing.T) {
	s := NewShutdown()
	s.Defer(func() { t.Error("teardown ran from interrupt") })
	s.Interrupt()
}
