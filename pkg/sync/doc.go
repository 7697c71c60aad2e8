// ABOUTME: Sample clock package
// ABOUTME: Provides the shared elapsed-frame counter between output and producer
// Package sync provides the shared sample clock used to derive musical
// position.
//
// The clock counts output frames actually emitted to hardware. Exactly one
// goroutine (the output callback) advances it; any number of goroutines may
// read it.
//
// Example:
//
//	clock := sync.NewSampleClock()
//	clock.Advance()          // output callback, once per emitted frame
//	elapsed := clock.Read()  // producer, any time
package sync
