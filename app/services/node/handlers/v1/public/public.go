// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/powledger/business/sys/validate"
	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Miner represents the background worker that mines pending transactions.
type Miner interface {
	SignalStartMining()
}

// Demo names the wallets the simulation endpoints act on.
type Demo struct {
	Sender   string
	Receiver string
	Miners   []string
}

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	State  *state.State
	NS     *nameservice.NameService
	WS     websocket.Upgrader
	Evts   *events.Feed
	Worker Miner
	Demo   Demo
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Subscribe before the upgrade so a closed feed is still reported over
	// plain HTTP.
	ch, err := h.Evts.Subscribe(v.TraceID)
	if err != nil {
		return errs.NewTrusted(err, http.StatusServiceUnavailable)
	}
	defer h.Evts.Unsubscribe(v.TraceID)

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// LedgerState reports whether the chain is valid, the settings it is mined
// under and the balance of every registered wallet. Balances are only
// reported for a valid chain.
func (h Handlers) LedgerState(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	entries := h.NS.Entries()

	addresses := make([]string, len(entries))
	for i, e := range entries {
		addresses[i] = e.Address
	}

	snap := h.State.QuerySnapshot(addresses)
	gen := h.State.RetrieveGenesis()

	resp := ledgerState{
		Status:       "Blockchain is not valid.",
		Valid:        snap.Valid,
		Difficulty:   snap.Difficulty,
		MiningReward: gen.MiningReward,
		FastBlock:    time.Duration(gen.FastBlock).String(),
		SlowBlock:    time.Duration(gen.SlowBlock).String(),
		Blocks:       snap.Blocks,
		Uncommitted:  snap.Uncommitted,
	}

	if snap.Valid {
		resp.Status = "Blockchain is valid"
		resp.Balances = toWalletInfos(entries, snap.Balances)
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// RegisterWallet creates a new wallet and registers it under the requested
// name.
func (h Handlers) RegisterWallet(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nw newWallet
	if err := decode(r, &nw); err != nil {
		return err
	}

	role, err := wallet.ParseRole(nw.Role)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	wlt, err := h.NS.Register(nw.Name, role)
	if err != nil {
		if errors.Is(err, nameservice.ErrNameExists) {
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return fmt.Errorf("register wallet: %w", err)
	}

	h.Log.Infow("register wallet", "traceid", web.GetTraceID(ctx), "name", nw.Name, "role", role, "address", wlt.Address())

	resp := walletInfo{
		Name:    nw.Name,
		Address: wlt.Address(),
		Role:    role.String(),
		Balance: h.State.BalanceOf(wlt.Address()),
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Wallets returns the registered wallets with their confirmed balances.
func (h Handlers) Wallets(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.walletInfos(), http.StatusOK)
}

// Balance returns the confirmed balance of an account. The account can be a
// registered name or an address.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	account := web.Param(r, "account")
	if wlt, err := h.NS.Wallet(account); err == nil {
		account = wlt.Address()
	}

	resp := accountBalance{
		Account: account,
		Name:    h.NS.Lookup(account),
		Balance: h.State.BalanceOf(account),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BlocksByAccount returns the blocks holding a transaction for the account,
// or every block when no account is given. The account can be a registered
// name or an address.
func (h Handlers) BlocksByAccount(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	account := web.Param(r, "account")
	if wlt, err := h.NS.Wallet(account); err == nil {
		account = wlt.Address()
	}

	dbBlocks := h.State.QueryBlocksByAccount(account)
	if len(dbBlocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	blocks := make([]block, len(dbBlocks))
	for i, dbBlock := range dbBlocks {
		blocks[i] = toBlock(h.NS, dbBlock)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions in submission order.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, toTxs(h.NS, h.State.RetrieveMempool()), http.StatusOK)
}

// SubmitWalletTransaction accepts a transaction signed by a wallet outside
// of the node. The sender must hold enough confirmed funds to cover the
// amount plus the fee.
func (h Handlers) SubmitWalletTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var st signedTx
	if err := decode(r, &st); err != nil {
		return err
	}

	if st.Fee != wallet.Fee(st.Amount) {
		return errs.NewTrusted(fmt.Errorf("fee must be %v of the amount: exp[%v] got[%v]", wallet.FeeRate, wallet.Fee(st.Amount), st.Fee), http.StatusBadRequest)
	}

	if err := wallet.CheckFunds(h.State, st.Sender, st.Amount, st.Fee); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	dbTx := st.toDBTx()

	h.Log.Infow("submit tx", "traceid", web.GetTraceID(ctx), "tx", dbTx)
	h.State.Submit(dbTx)

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "transaction added to mempool",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SignalMining signals the background worker to mine the pending
// transactions.
func (h Handlers) SignalMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.Worker == nil {
		return errs.NewTrusted(errors.New("background mining is disabled"), http.StatusServiceUnavailable)
	}

	h.Worker.SignalStartMining()

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining signaled",
	}

	return web.Respond(ctx, w, resp, http.StatusAccepted)
}

// =============================================================================

// decode reads the request body into val. Field errors pass through to be
// reported per field, anything else is a bad request.
func decode(r *http.Request, val any) error {
	if err := web.Decode(r, val); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return nil
}

func (h Handlers) walletInfos() []walletInfo {
	entries := h.NS.Entries()

	addresses := make([]string, len(entries))
	for i, e := range entries {
		addresses[i] = e.Address
	}

	return toWalletInfos(entries, h.State.QueryBalances(addresses))
}

func toWalletInfos(entries []nameservice.Entry, balances map[string]float64) []walletInfo {
	infos := make([]walletInfo, len(entries))
	for i, e := range entries {
		infos[i] = walletInfo{
			Name:    e.Name,
			Address: e.Address,
			Role:    e.Role.String(),
			Balance: balances[e.Address],
		}
	}

	return infos
}
