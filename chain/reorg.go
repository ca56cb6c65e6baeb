package chain

// TotalWork is Σ 2^bits over a sequence of blocks. With a single global
// difficulty this reduces to length-weighted comparison (strict-longest-
// chain fork choice), but the formula is kept rather than simplified to
// len(blocks) so the same code accommodates a per-block-bits variant —
// spec.md §9 "Work formula".
func TotalWork(blocks []Block) uint64 {
	var total uint64
	for _, b := range blocks {
		total += 1 << b.Bits
	}
	return total
}
