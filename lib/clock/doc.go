// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Code that needs the current time accepts a Clock instead of calling
// time.Now directly. Production callers pass Real(); tests pass
// Fake(...) and move time explicitly with Set or Advance:
//
//	c := clock.Fake(time.Date(2017, 10, 11, 15, 18, 33, 0, time.UTC))
//	builder, _ := event.NewBuilder(event.BuilderConfig{Clock: c, ...})
//	c.Advance(time.Minute)
package clock
