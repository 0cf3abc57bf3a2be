package public

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/ardanlabs/powledger/foundation/web"
)

// Number of sends and mining rounds performed by the simulation endpoints.
const (
	simulatedSends  = 3
	simulatedRounds = 2
	simulatedAmount = 1.0
)

// MineInitial mines the pending transactions paying the reward to the demo
// sender, giving it the funds the simulated sends need.
func (h Handlers) MineInitial(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	sender, err := h.NS.Wallet(h.Demo.Sender)
	if err != nil {
		return fmt.Errorf("demo sender: %w", err)
	}

	blk, err := h.State.MinePending(ctx, sender.Address())
	if err != nil {
		return fmt.Errorf("mine initial: %w", err)
	}

	resp := struct {
		Message string `json:"message"`
		Block   block  `json:"block"`
	}{
		Message: fmt.Sprintf("%s received initial mining reward", h.Demo.Sender),
		Block:   toBlock(h.NS, blk),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SimulateTransactions sends funds from the demo sender to the demo receiver
// a few times. A failed send doesn't stop the ones that follow.
func (h Handlers) SimulateTransactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	sender, err := h.NS.Wallet(h.Demo.Sender)
	if err != nil {
		return fmt.Errorf("demo sender: %w", err)
	}

	receiver, err := h.NS.Wallet(h.Demo.Receiver)
	if err != nil {
		return fmt.Errorf("demo receiver: %w", err)
	}

	results := make([]string, 0, simulatedSends)
	for i := 1; i <= simulatedSends; i++ {
		if _, err := wallet.Send(h.State, sender, receiver.Address(), simulatedAmount); err != nil {
			results = append(results, fmt.Sprintf("Transaction %d failed: %s", i, err))
			continue
		}

		if sender.IsMiner() {
			h.Log.Infow("simulate", "traceid", web.GetTraceID(ctx), "status", "miner added transaction to mining pool", "miner", sender.Address())
		}

		results = append(results, fmt.Sprintf("Transaction %d from %s to %s successful", i, h.Demo.Sender, h.Demo.Receiver))
	}

	resp := struct {
		Transactions []string `json:"transactions"`
	}{
		Transactions: results,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SimulateMining has every demo miner mine a block in turn, for a couple of
// rounds. Each block pays its miner the reward plus the fees it collected.
func (h Handlers) SimulateMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	results := make([]string, 0, simulatedRounds*len(h.Demo.Miners))

	for round := 0; round < simulatedRounds; round++ {
		for _, name := range h.Demo.Miners {
			miner, err := h.NS.Wallet(name)
			if err != nil {
				return fmt.Errorf("demo miner: %w", err)
			}

			if _, err := h.State.MinePending(ctx, miner.Address()); err != nil {
				return fmt.Errorf("simulate mining: %s: %w", name, err)
			}

			results = append(results, fmt.Sprintf("%s mined a block and received reward", name))
		}
	}

	resp := struct {
		Mining []string `json:"mining"`
	}{
		Mining: results,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
