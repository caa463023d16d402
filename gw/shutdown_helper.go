package gw

import (
	"context"
	"sync"
)

// OnceActivateHandler is called exactly once, with shutdown paused, to
// activate an object that supports shutdown. If it returns nil, the
// object is activated; if it returns an error, the object is not
// activated and shutdown starts immediately. It is never invoked if
// shutdown has already started.
type OnceActivateHandler func() error

// OnceShutdownHandler is implemented by the object managed by a
// ShutdownHelper.
type OnceShutdownHandler interface {
	// HandleOnceShutdown is called exactly once, in its own goroutine. It
	// takes completionError as an advisory completion value, actually
	// shuts down, then returns the real completion value. Never called
	// while shutdown is paused.
	HandleOnceShutdown(completionError error) error
}

// AsyncShutdowner is implemented by objects that provide asynchronous
// shutdown: ShutdownHelper itself satisfies it, which is what lets one
// ShutdownHelper-managed object (a Pool) be registered as a shutdown
// child of another (a Client).
type AsyncShutdowner interface {
	// StartShutdown schedules asynchronous shutdown of the object. If
	// shutdown has already been scheduled, it has no effect.
	// completionErr is an advisory error (or nil) used as the completion
	// status from WaitShutdown().
	StartShutdown(completionErr error)

	// ShutdownDoneChan returns a chan that is closed once shutdown is
	// complete.
	ShutdownDoneChan() <-chan struct{}

	// IsDoneShutdown reports whether shutdown has completed.
	IsDoneShutdown() bool

	// WaitShutdown blocks until shutdown is complete and returns the
	// final completion status.
	WaitShutdown() error
}

// ShutdownHelper is a base that manages clean asynchronous shutdown for
// an object implementing OnceShutdownHandler: every long-lived gateway
// component (Connection, Pool, CallbackServer, Client, TokenFile) embeds
// one instead of hand-rolling its own close-once bookkeeping.
type ShutdownHelper struct {
	// Logger is used for log output from this helper.
	Logger

	// Lock is a general-purpose fine-grained mutex, usable by the
	// embedding object as well.
	Lock sync.Mutex

	shutdownHandler OnceShutdownHandler

	// shutdownPauseCount must reach zero before shutdown can commence.
	shutdownPauseCount int

	isActivated         bool
	isScheduledShutdown bool
	isStartedShutdown   bool
	isDoneShutdown      bool

	// shutdownErr holds the final completion status once isDoneShutdown
	// is true.
	shutdownErr error

	shutdownStartedChan     chan struct{}
	shutdownHandlerDoneChan chan struct{}
	shutdownDoneChan        chan struct{}

	// wg is waited on before shutdown is considered complete; incremented
	// once per registered child.
	wg sync.WaitGroup
}

// InitShutdownHelper initializes a new ShutdownHelper in place.
func (h *ShutdownHelper) InitShutdownHelper(
	logger Logger,
	shutdownHandler OnceShutdownHandler,
) {
	h.Logger = logger
	h.shutdownHandler = shutdownHandler
	h.shutdownStartedChan = make(chan struct{})
	h.shutdownHandlerDoneChan = make(chan struct{})
	h.shutdownDoneChan = make(chan struct{})
}

// asyncDoStartedShutdown starts background processing of shutdown
// *after* h.isStartedShutdown has already been set true and
// h.shutdownErr set to the advisory completion error.
func (h *ShutdownHelper) asyncDoStartedShutdown() {
	h.DLogf("->shutdownStarted")
	close(h.shutdownStartedChan)
	go func() {
		h.shutdownErr = h.shutdownHandler.HandleOnceShutdown(h.shutdownErr)
		h.DLogf("->shutdownHandlerDone")
		close(h.shutdownHandlerDoneChan)
		h.wg.Wait()
		h.isDoneShutdown = true
		h.DLogf("->shutdownDone")
		close(h.shutdownDoneChan)
	}()
}

// Activate sets the "activated" flag for this helper. It is a no-op if
// already activated, and fails if shutdown has already started.
func (h *ShutdownHelper) Activate() error {
	h.Lock.Lock()
	defer h.Lock.Unlock()

	if !h.isActivated {
		if h.isStartedShutdown {
			return h.Errorf("Cannot activate; shutdown already initiated")
		}
		h.isActivated = true
	}

	return nil
}

// DoOnceActivate takes steps to activate the object:
//
//	if already activated, returns nil
//	if not activated and already shutting down:
//	   if waitOnFail, waits for shutdown to complete
//	   returns an error
//	if not activated and not shutting down:
//	   pauses shutdown, invokes onceActivateHandler, resumes shutdown
//	   if the handler returns nil, activates the object and returns nil
//	   if the handler or activation fails, starts shutdown with that
//	   error and, if waitOnFail, waits for shutdown to complete
func (h *ShutdownHelper) DoOnceActivate(onceActivateHandler OnceActivateHandler, waitOnFail bool) error {
	var err error
	h.Lock.Lock()
	if h.isActivated {
		h.Lock.Unlock()
		return nil
	}
	if h.isStartedShutdown {
		h.Lock.Unlock()
		if waitOnFail {
			err = h.WaitShutdown()
		}
		if err == nil {
			err = h.Errorf("Shutdown already started; cannot Activate")
		}
		return err
	}
	h.shutdownPauseCount++
	h.Lock.Unlock()
	err = onceActivateHandler()
	if err == nil {
		err = h.Activate()
	}
	if err != nil {
		h.StartShutdown(err)
	}
	h.ResumeShutdown()
	if err != nil && waitOnFail {
		h.WaitShutdown()
	}
	return err
}

// ResumeShutdown decrements the shutdown pause count, and if it reaches
// zero, allows shutdown to start.
func (h *ShutdownHelper) ResumeShutdown() {
	h.Lock.Lock()
	if h.shutdownPauseCount < 1 {
		h.Panic("ResumeShutdown called without a matching pause")
		return
	}
	h.shutdownPauseCount--
	doShutdownNow := h.shutdownPauseCount == 0 && h.isScheduledShutdown && !h.isStartedShutdown
	if doShutdownNow {
		h.isStartedShutdown = true
	}
	h.Lock.Unlock()

	if doShutdownNow {
		h.asyncDoStartedShutdown()
	}
}

// ShutdownOnContext begins background monitoring of ctx, and starts
// asynchronously shutting down this helper with the context's error if
// ctx completes first. Non-blocking; just bounds this object's lifetime
// to the context.
func (h *ShutdownHelper) ShutdownOnContext(ctx context.Context) {
	go func() {
		select {
		case <-h.shutdownStartedChan:
		case <-ctx.Done():
			h.StartShutdown(ctx.Err())
		}
	}()
}

// IsStartedShutdown reports whether shutdown has begun. Continues to
// return true once shutdown completes.
func (h *ShutdownHelper) IsStartedShutdown() bool {
	return h.isStartedShutdown
}

// IsDoneShutdown reports whether shutdown has completed.
func (h *ShutdownHelper) IsDoneShutdown() bool {
	return h.isDoneShutdown
}

// ShutdownWG returns a sync.WaitGroup callers can Add() to, deferring
// final completion of shutdown until the matching Done() calls are made.
func (h *ShutdownHelper) ShutdownWG() *sync.WaitGroup {
	return &h.wg
}

// ShutdownStartedChan returns a channel closed as soon as shutdown is
// initiated.
func (h *ShutdownHelper) ShutdownStartedChan() <-chan struct{} {
	return h.shutdownStartedChan
}

// ShutdownDoneChan returns a channel closed after shutdown is done.
func (h *ShutdownHelper) ShutdownDoneChan() <-chan struct{} {
	return h.shutdownDoneChan
}

// WaitShutdown waits for shutdown to complete and returns its final
// status. It does not itself initiate shutdown.
func (h *ShutdownHelper) WaitShutdown() error {
	<-h.shutdownDoneChan
	return h.shutdownErr
}

// Shutdown performs a synchronous shutdown: it starts shutdown if not
// already started, waits for completion, then returns the final status.
func (h *ShutdownHelper) Shutdown(completionError error) error {
	h.StartShutdown(completionError)
	return h.WaitShutdown()
}

// StartShutdown schedules asynchronous shutdown of the object. A second
// call is a no-op. If shutdown is currently paused, starting is deferred
// until the pause count returns to zero.
//
// The first call kicks off, in order: signal shutdown scheduled, wait
// for the pause count to reach zero, signal shutdown started, invoke
// HandleOnceShutdown with the advisory completion status (its return
// value becomes the final status), signal the handler done, shut down
// and wait for every registered child, wait for the wait group, then
// signal shutdown complete.
func (h *ShutdownHelper) StartShutdown(completionErr error) {
	var doShutdownNow bool
	h.Lock.Lock()
	if !h.isScheduledShutdown {
		if h.isStartedShutdown {
			h.Panic("shutdown started before scheduled")
		}
		h.shutdownErr = completionErr
		h.isScheduledShutdown = true
		doShutdownNow = (h.shutdownPauseCount == 0)
		h.isStartedShutdown = doShutdownNow
	}
	h.Lock.Unlock()

	if doShutdownNow {
		h.asyncDoStartedShutdown()
	}
}

// Close shuts down with an advisory completion status of nil and returns
// the final completion status.
func (h *ShutdownHelper) Close() error {
	h.DLogf("Close()")
	return h.Shutdown(nil)
}

// AddShutdownChild registers child to be actively shut down by this
// helper after HandleOnceShutdown returns, and waited on before this
// helper's own shutdown is considered complete. The child is shut down
// with an advisory completion status equal to HandleOnceShutdown's
// return value.
func (h *ShutdownHelper) AddShutdownChild(child AsyncShutdowner) {
	h.DLogf("AddShutdownChild(\"%s\")", child)
	h.wg.Add(1)
	go func() {
		select {
		case <-child.ShutdownDoneChan():
			h.DLogf("Shutdown of child done, signalling wg: \"%s\"", child)
		case <-h.shutdownHandlerDoneChan:
			h.DLogf("Shutdown handler done, shutting down child child \"%s\"", child)
			child.StartShutdown(h.shutdownErr)
			child.WaitShutdown()
			h.DLogf("Shutdown of child done, signalling wg: \"%s\"", child)
		}
		h.wg.Done()
	}()
}
