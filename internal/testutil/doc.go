// Package testutil provides testing utilities for resiligo.
//
// This package is intended for internal testing only and should not be
// imported by external packages.
//
// # Scripted Upstream
//
// Upstream is an in-process stand-in for an unreliable API. It plays back a
// script of outcomes, repeating the last one once the script runs out:
//
//	up := testutil.NewUpstream(
//	    testutil.Fail(resiligo.NewTransientError("boom")),
//	    testutil.Succeed("ok"),
//	)
//	result, err := inv.Invoke(ctx, "payload", up.Call)
//	// up.Calls() == 2
//
// # Fake Sleeper
//
// FakeSleeper records sleep calls without actually sleeping:
//
//	sleeper := &testutil.FakeSleeper{}
//	// Pass to the invoker via WithSleeper option
//	assert.Equal(t, 2*time.Second, sleeper.LastCall())
//
// # Config Presets
//
// AggressiveConfig returns a Config tuned for fast, deterministic tests:
// no jitter, a two-failure breaker threshold and a short recovery timeout.
package testutil
