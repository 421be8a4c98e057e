// Package feed drives the news ticker.
//
// A Rotator polls a news resolver on a slow interval and, between polls,
// advances display focus through the current batch on a short interval,
// wrapping at the end. Pausing stops the rotation timer without resetting
// the index; a new batch resets focus to its first item. Each Rotator holds
// at most one poll timer and one rotation timer.
package feed
