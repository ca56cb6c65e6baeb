package chain

import "github.com/golang-powcoin/powcoin/log"

// Acceptor ties the chain store, the UTXO set, and the validator together
// under spec.md §4.5/§4.6's rules. Callers are expected to hold whatever
// external lock guards concurrent access (node.Node's mutex) — Acceptor
// itself does no locking.
type Acceptor struct {
	Store *Store
	UTXO  *UTXOSet
}

// NewAcceptor wires a fresh store and UTXO set together.
func NewAcceptor() *Acceptor {
	return &Acceptor{Store: NewStore(), UTXO: NewUTXOSet()}
}

// AcceptGenesis connects the pre-mined genesis block directly, bypassing
// classification (there is no prior chain to classify against).
func (a *Acceptor) AcceptGenesis(b Block) error {
	a.Store.Blocks = append(a.Store.Blocks, b)
	return a.UTXO.ConnectTx(b.Coinbase())
}

// Accept classifies an incoming block and applies spec.md §4.5's action
// for that classification, reorganizing the main chain if a branch
// overtakes it. It returns the classification reached (useful to callers
// deciding whether to gossip or to trigger a sync) and any error.
func (a *Acceptor) Accept(b Block) (Classification, error) {
	class, branchIndex := a.Store.Classify(b)

	switch class {
	case ClassDuplicate:
		return class, ErrDuplicateBlock

	case ClassExtendsChain:
		if err := a.UTXO.ValidateBlock(b, true); err != nil {
			return class, err
		}
		a.connectBlock(b)
		log.Chain.Infof("extended chain to height %d", a.Store.Height())
		return class, nil

	case ClassForksChain:
		if err := a.UTXO.ValidateBlock(b, false); err != nil {
			return class, err
		}
		a.Store.Branches = append(a.Store.Branches, []Block{b})
		log.Chain.Infof("created branch %d", len(a.Store.Branches)-1)
		return class, nil

	case ClassExtendsBranch:
		if err := a.UTXO.ValidateBlock(b, false); err != nil {
			return class, err
		}
		a.Store.Branches[branchIndex] = append(a.Store.Branches[branchIndex], b)
		branch := a.Store.Branches[branchIndex]
		log.Chain.Infof("extended branch %d to height %d", branchIndex, len(branch)-1)

		forkHeight, ok := a.Store.indexOnMainChain(branch[0].PrevID)
		if !ok {
			return class, ErrUnknownParent
		}
		chainSinceFork := a.Store.Blocks[forkHeight+1:]
		if TotalWork(branch) > TotalWork(chainSinceFork) {
			log.Chain.Infof("reorging to branch %d", branchIndex)
			if err := a.reorg(branch, branchIndex); err != nil {
				return class, err
			}
		}
		return class, nil

	case ClassForksBranch:
		if err := a.UTXO.ValidateBlock(b, false); err != nil {
			return class, err
		}
		base := a.Store.Branches[branchIndex]
		height := 0
		for h, bb := range base {
			if bb.ID() == b.PrevID {
				height = h
				break
			}
		}
		newBranch := append(append([]Block{}, base[:height+1]...), b)
		a.Store.Branches = append(a.Store.Branches, newBranch)
		log.Chain.Infof("created branch %d to height %d", len(a.Store.Branches)-1, len(newBranch)-1)
		return class, nil

	default:
		return ClassUnknownParent, ErrUnknownParent
	}
}

// connectBlock appends b to the main chain and applies each of its
// transactions to the UTXO set, in order.
func (a *Acceptor) connectBlock(b Block) {
	a.Store.Blocks = append(a.Store.Blocks, b)
	for _, tx := range b.Txns {
		// Coinbase/UTXO invariants guarantee this never fails once
		// ValidateBlock has already accepted the block.
		_ = a.UTXO.ConnectTx(tx)
	}
}

// reorg switches the main chain to branch, rooted at the fork point
// implied by branch[0].PrevID. It disconnects main-chain blocks back to
// that fork point, stashes them as a branch so they can be reorged back
// to later, then connects branch's blocks one at a time — rolling back
// to the disconnected blocks and giving up if any of them fails
// validation, so no partial branch is ever left connected, and returning
// ErrReorgFailed in that case (spec.md §4.6, §7 ErrReorgFailed).
func (a *Acceptor) reorg(branch []Block, branchIndex int) error {
	var disconnected []Block
	for a.Store.Tip().ID() != branch[0].PrevID {
		n := len(a.Store.Blocks)
		b := a.Store.Blocks[n-1]
		a.Store.Blocks = a.Store.Blocks[:n-1]
		for i := len(b.Txns) - 1; i >= 0; i-- {
			_ = a.UTXO.DisconnectTx(b.Txns[i], a.Store.Blocks)
		}
		disconnected = append([]Block{b}, disconnected...)
	}

	a.Store.Branches[branchIndex] = disconnected

	for _, b := range branch {
		if err := a.UTXO.ValidateBlock(b, true); err != nil {
			log.Chain.Warnf("reorg failed validating block, rolling back: %v", err)
			_ = a.reorg(disconnected, branchIndex)
			return ErrReorgFailed
		}
		a.connectBlock(b)
	}
	return nil
}
