package public

import (
	"github.com/ardanlabs/powledger/business/sys/validate"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/nameservice"
)

type tx struct {
	Sender       string  `json:"sender"`
	SenderName   string  `json:"sender_name"`
	Receiver     string  `json:"receiver"`
	ReceiverName string  `json:"receiver_name"`
	Amount       float64 `json:"amount"`
	Fee          float64 `json:"fee"`
	Signature    string  `json:"signature"`
	Reward       bool    `json:"reward"`
}

type block struct {
	Index         uint64 `json:"index"`
	TimeStamp     int64  `json:"timestamp"`
	PrevBlockHash string `json:"prev_block_hash"`
	Hash          string `json:"hash"`
	Nonce         uint64 `json:"nonce"`
	Trans         []tx   `json:"txs"`
}

type walletInfo struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Role    string  `json:"role"`
	Balance float64 `json:"balance"`
}

type accountBalance struct {
	Account string  `json:"account"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

type ledgerState struct {
	Status       string       `json:"status"`
	Valid        bool         `json:"valid"`
	Difficulty   uint         `json:"difficulty"`
	MiningReward float64      `json:"mining_reward"`
	FastBlock    string       `json:"fast_block"`
	SlowBlock    string       `json:"slow_block"`
	Blocks       int          `json:"blocks"`
	Uncommitted  int          `json:"uncommitted"`
	Balances     []walletInfo `json:"balances,omitempty"`
}

// newWallet is the request to register a named wallet.
type newWallet struct {
	Name string `json:"name" validate:"required,alphanum,max=32"`
	Role string `json:"role" validate:"omitempty,oneof=regular miner"`
}

// Validate checks the data in the model is considered clean.
func (nw newWallet) Validate() error {
	return validate.Check(nw)
}

// signedTx is a transaction built and signed by a wallet outside the node.
type signedTx struct {
	Sender    string  `json:"sender" validate:"required,address"`
	Receiver  string  `json:"receiver" validate:"required"`
	Amount    float64 `json:"amount" validate:"gt=0"`
	Fee       float64 `json:"fee" validate:"gte=0"`
	Signature string  `json:"signature" validate:"required,hexadecimal"`
}

// Validate checks the data in the model is considered clean.
func (st signedTx) Validate() error {
	return validate.Check(st)
}

func (st signedTx) toDBTx() database.Tx {
	tx := database.NewTx(st.Sender, st.Receiver, st.Amount, st.Fee)
	tx.Signature = st.Signature
	return tx
}

// =============================================================================

func toTx(ns *nameservice.NameService, dbTx database.Tx) tx {
	return tx{
		Sender:       dbTx.Sender,
		SenderName:   ns.Lookup(dbTx.Sender),
		Receiver:     dbTx.Receiver,
		ReceiverName: ns.Lookup(dbTx.Receiver),
		Amount:       dbTx.Amount,
		Fee:          dbTx.Fee,
		Signature:    dbTx.Signature,
		Reward:       dbTx.IsReward(),
	}
}

func toTxs(ns *nameservice.NameService, dbTxs []database.Tx) []tx {
	trans := make([]tx, len(dbTxs))
	for i, dbTx := range dbTxs {
		trans[i] = toTx(ns, dbTx)
	}
	return trans
}

func toBlock(ns *nameservice.NameService, dbBlock database.Block) block {
	return block{
		Index:         dbBlock.Index,
		TimeStamp:     dbBlock.TimeStamp,
		PrevBlockHash: dbBlock.PrevBlockHash,
		Hash:          dbBlock.Hash,
		Nonce:         dbBlock.Nonce,
		Trans:         toTxs(ns, dbBlock.Trans),
	}
}
