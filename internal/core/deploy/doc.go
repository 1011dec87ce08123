// Package deploy provides pure functions for planning a challenge start:
// external port allocation and per-container engine port tables plus the
// player-facing service strings.
//
// The allocator is seeded per invocation and its state is never persisted.
// Two invocations running at the same time on one host can therefore hand out
// colliding ports; callers accept this for single-challenge local use.
package deploy
