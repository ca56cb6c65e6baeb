package chain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTotalWorkSumsPerBlockBits(t *testing.T) {
	blocks := []Block{
		{Bits: 2},
		{Bits: 2},
		{Bits: 3},
	}
	require.Equal(t, uint64(1<<2+1<<2+1<<3), TotalWork(blocks))
}

func TestTotalWorkEmpty(t *testing.T) {
	require.Equal(t, uint64(0), TotalWork(nil))
}
