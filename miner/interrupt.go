package miner

import "sync/atomic"

// Interrupt is the single cooperative-cancellation flag shared between the
// dispatcher and the miner (spec.md §5). The miner polls it once per
// nonce iteration and abandons the current candidate when set; the
// dispatcher sets it whenever a block is accepted from the network. No
// other cancellation primitive is used.
type Interrupt struct {
	flag atomic.Bool
}

// Set requests that the current mining candidate be abandoned.
func (i *Interrupt) Set() {
	i.flag.Store(true)
}

// Poll reports whether an interrupt is pending, clearing it as a side
// effect (matching POWCoin's mining_interrupt.clear() on observation).
func (i *Interrupt) Poll() bool {
	return i.flag.CompareAndSwap(true, false)
}
