// Command powcoind is the node's command-line driver: start a server, or
// talk to one as a client (ping/balance/tx), per spec.md §6's CLI surface.
// This surface is an external collaborator to the core (spec.md §1) —
// it exists only to exercise that core from a shell.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/golang-powcoin/powcoin/chain"
	"github.com/golang-powcoin/powcoin/chain/chaincfg"
	"github.com/golang-powcoin/powcoin/identity"
	"github.com/golang-powcoin/powcoin/log"
	"github.com/golang-powcoin/powcoin/miner"
	"github.com/golang-powcoin/powcoin/node"
	"github.com/golang-powcoin/powcoin/p2p"
)

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println(" serve - run the node; reads NAME and PEERS env vars")
	fmt.Println(" ping [-node NAME] - ping a node")
	fmt.Println(" balance NAME [-node NAME] - print a named key's balance")
	fmt.Println(" tx FROM TO AMOUNT [-node NAME] - build, sign, and submit a transaction")
}

func hostFor(name string) string {
	return fmt.Sprintf("%s:%d", name, chaincfg.Port)
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		runtime.Goexit()
	}

	switch os.Args[1] {
	case "serve":
		runServe()
	case "ping":
		runPing(os.Args[2:])
	case "balance":
		runBalance(os.Args[2:])
	case "tx":
		runTx(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func runServe() {
	name := os.Getenv("NAME")
	if name == "" {
		fmt.Println("NAME env var is not set")
		os.Exit(1)
	}
	peersEnv := os.Getenv("PEERS")
	var peers []string
	if peersEnv != "" {
		peers = strings.Split(peersEnv, ",")
	}

	kp, ok := identity.Named(name)
	if !ok {
		fmt.Printf("unknown node name %q\n", name)
		os.Exit(1)
	}

	selfAddr := hostFor(name)
	n := node.New(selfAddr)

	alice, _ := identity.Named("alice")
	genesis := miner.MineGenesis(alice.Public)
	if err := n.SeedGenesis(genesis); err != nil {
		log.Node.Errorf("seeding genesis: %v", err)
		os.Exit(1)
	}
	log.Node.Infof("genesis id %s", genesis.ID())

	delay := node.StartupDelay(roleIndex(name))
	log.Node.Infof("staggering startup by %s", delay)
	time.Sleep(delay)

	for _, peer := range peers {
		peer := strings.TrimSpace(peer)
		if peer == "" {
			continue
		}
		go func(addr string) {
			if err := n.Connect(hostFor(addr)); err != nil {
				log.Node.Debugf("connect to %s failed: %v", addr, err)
			}
		}(peer)
	}

	m := &miner.Miner{
		Payee:     kp.Public,
		Snapshot:  n.Snapshot,
		Submit:    n.Submit,
		Interrupt: n.Interrupt(),
	}
	go m.Mine()

	if err := p2p.Serve(selfAddr, n); err != nil {
		log.Node.Errorf("serve: %v", err)
		os.Exit(1)
	}
}

func roleIndex(name string) int {
	switch name {
	case "node0":
		return 0
	case "node1":
		return 1
	case "node2":
		return 2
	default:
		return 0
	}
}

func runPing(args []string) {
	fs := flag.NewFlagSet("ping", flag.ExitOnError)
	target := fs.String("node", "node0", "node to contact")
	fs.Parse(args)

	_, err := p2p.Request(hostFor(*target), p2p.Envelope{Command: p2p.CmdPing, Data: p2p.Empty{}})
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runBalance(args []string) {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	target := fs.String("node", "node0", "node to contact")
	fs.Parse(args)
	if fs.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}
	name := fs.Arg(0)

	kp, ok := identity.Named(name)
	if !ok {
		fmt.Printf("unknown name %q\n", name)
		os.Exit(1)
	}

	reply, err := p2p.Request(hostFor(*target), p2p.Envelope{
		Command: p2p.CmdBalance,
		Data:    p2p.PublicKeyPayload{PublicKey: kp.Public},
	})
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	payload, ok := reply.Data.(p2p.BalancePayload)
	if !ok {
		fmt.Println("unexpected reply")
		os.Exit(1)
	}
	fmt.Println(payload.Amount)
}

func runTx(args []string) {
	fs := flag.NewFlagSet("tx", flag.ExitOnError)
	target := fs.String("node", "node0", "node to contact")
	fs.Parse(args)
	if fs.NArg() < 3 {
		printUsage()
		os.Exit(1)
	}
	fromName, toName := fs.Arg(0), fs.Arg(1)
	amount, err := strconv.Atoi(fs.Arg(2))
	if err != nil {
		fmt.Println("amount must be an integer")
		os.Exit(1)
	}

	from, ok := identity.Named(fromName)
	if !ok {
		fmt.Printf("unknown name %q\n", fromName)
		os.Exit(1)
	}
	to, ok := identity.Named(toName)
	if !ok {
		fmt.Printf("unknown name %q\n", toName)
		os.Exit(1)
	}

	addr := hostFor(*target)
	reply, err := p2p.Request(addr, p2p.Envelope{
		Command: p2p.CmdUTXOs,
		Data:    p2p.PublicKeyPayload{PublicKey: from.Public},
	})
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	payload, ok := reply.Data.(p2p.UTXOsPayload)
	if !ok {
		fmt.Println("unexpected reply")
		os.Exit(1)
	}

	tx, err := buildTx(from, to.Public, amount, payload.UTXOs)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if err := p2p.Send(addr, p2p.Envelope{Command: p2p.CmdTx, Data: p2p.TxPayload{Tx: tx}}); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// buildTx greedily selects UTXOs until amount is covered, signs each
// input over its spend message, and returns change to the sender.
func buildTx(from identity.KeyPair, toPub []byte, amount int, utxos []chain.TxOut) (chain.Tx, error) {
	var selected []chain.TxOut
	total := 0
	for _, out := range utxos {
		selected = append(selected, out)
		total += out.Amount
		if total >= amount {
			break
		}
	}
	if total < amount {
		return chain.Tx{}, fmt.Errorf("insufficient funds: have %d, need %d", total, amount)
	}

	txID := chain.NewTxID()
	outs := []chain.TxOut{{TxID: txID, Index: 0, Amount: amount, PublicKey: toPub}}
	if change := total - amount; change > 0 {
		outs = append(outs, chain.TxOut{TxID: txID, Index: 1, Amount: change, PublicKey: from.Public})
	}

	tx := chain.Tx{ID: txID, Outs: outs}
	for _, out := range selected {
		tx.Ins = append(tx.Ins, chain.TxIn{TxID: out.TxID, Index: out.Index})
	}
	for i := range tx.Ins {
		msg := chain.SpendMessage(tx, i)
		tx.Ins[i].Signature = identity.Sign(from, msg)
	}
	return tx, nil
}
