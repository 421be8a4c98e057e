package chat

import (
	"context"
	"math/rand/v2"
	"time"
)

// SampleResponses are the canned answers used when no chat backend is configured.
var SampleResponses = []string{
	"Bitcoin uses a proof-of-work consensus mechanism, while many newer blockchains use proof-of-stake which is more energy efficient.",
	"Ethereum's merge to proof-of-stake reduced its energy consumption by approximately 99.95%.",
	"DeFi (Decentralized Finance) refers to financial services built on blockchain technologies that aim to recreate traditional financial systems without centralized intermediaries.",
	"NFTs (Non-Fungible Tokens) are unique digital assets that represent ownership of a specific item, often digital art, collectibles, or virtual real estate.",
	"A blockchain is a distributed, immutable ledger that records transactions across many computers to ensure security and transparency.",
	"Market capitalization is calculated by multiplying the current price of a cryptocurrency by its circulating supply.",
	"Cold storage refers to keeping cryptocurrency offline, away from internet-connected devices, to protect it from hacking attempts.",
}

// Scripted answers with a random sample response after a fixed delay.
type Scripted struct {
	delay time.Duration
	pick  func(n int) int
}

// NewScripted creates a Scripted replier.
func NewScripted(delay time.Duration) *Scripted {
	return &Scripted{delay: delay, pick: rand.IntN}
}

// Send ignores message and returns one of SampleResponses.
func (s *Scripted) Send(ctx context.Context, message string) (string, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return SampleResponses[s.pick(len(SampleResponses))], nil
}
