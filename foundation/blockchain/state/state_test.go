package state_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const miner = "miner"

func ifErrFailNow(t *testing.T, err error) {
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
}

// clock provides a controlled time source. Every call to Now moves time
// forward by step.
type clock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newClock(step time.Duration) *clock {
	return &clock{
		now:  time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC),
		step: step,
	}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// newState constructs a ledger whose clock moves 15 seconds per read, which
// keeps the difficulty steady across mining calls.
func newState(t *testing.T, difficulty uint) (*state.State, *clock) {
	gen := genesis.Default()
	gen.Difficulty = difficulty

	clk := newClock(15 * time.Second)

	st, err := state.New(state.Config{
		Genesis: gen,
		Now:     clk.Now,
	})
	ifErrFailNow(t, err)

	return st, clk
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// =============================================================================

func Test_Genesis(t *testing.T) {
	t.Log("Given the need to start a new ledger.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen constructing a ledger at difficulty 2.", testID)
		{
			st, _ := newState(t, 2)

			chain := st.RetrieveChain()
			if len(chain) != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould have only the genesis block, got %d.", failed, testID, len(chain))
			}
			t.Logf("\t%s\tTest %d:\tShould have only the genesis block.", success, testID)

			gb := chain[0]
			if gb.Index != 0 || gb.PrevBlockHash != "0" || len(gb.Trans) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould have a well formed genesis block: %+v", failed, testID, gb)
			}
			t.Logf("\t%s\tTest %d:\tShould have a well formed genesis block.", success, testID)

			if !strings.HasPrefix(gb.Hash, "00") || gb.Hash != gb.ComputeHash() {
				t.Fatalf("\t%s\tTest %d:\tShould have a mined genesis block: %s", failed, testID, gb.Hash)
			}
			t.Logf("\t%s\tTest %d:\tShould have a mined genesis block.", success, testID)

			if !st.IsValid() {
				t.Fatalf("\t%s\tTest %d:\tShould be valid after construction.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould be valid after construction.", success, testID)

			for _, addr := range []string{"alice", "bob", miner, database.SystemSender} {
				if bal := st.BalanceOf(addr); bal != 0 {
					t.Fatalf("\t%s\tTest %d:\tShould have a zero balance for %s, got %v.", failed, testID, addr, bal)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould have zero balances.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen constructing a ledger at difficulty 0.", testID)
		{
			_, err := state.New(state.Config{Genesis: genesis.Genesis{}})
			if !errors.Is(err, state.ErrInvalidDifficulty) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the difficulty: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the difficulty.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen constructing a ledger from a partial genesis.", testID)
		{
			_, err := state.New(state.Config{Genesis: genesis.Genesis{Difficulty: 2}})
			if !errors.Is(err, genesis.ErrInvalidReward) {
				t.Fatalf("\t%s\tTest %d:\tShould reject a genesis without a reward: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a genesis without a reward.", success, testID)

			_, err = state.New(state.Config{Genesis: genesis.Genesis{Difficulty: 2, MiningReward: 6.25}})
			if !errors.Is(err, genesis.ErrInvalidInterval) {
				t.Fatalf("\t%s\tTest %d:\tShould reject a genesis without retarget intervals: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a genesis without retarget intervals.", success, testID)
		}
	}
}

func Test_MinePending(t *testing.T) {
	t.Log("Given the need to mine the pending transactions.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the mempool is empty.", testID)
		{
			st, _ := newState(t, 1)

			before := st.BalanceOf(miner)
			block, err := st.MinePending(context.Background(), miner)
			ifErrFailNow(t, err)

			if got := st.BalanceOf(miner) - before; got != 6.25 {
				t.Fatalf("\t%s\tTest %d:\tShould pay the reward of 6.25, got %v.", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould pay the reward of 6.25.", success, testID)

			if len(block.Trans) != 1 || block.Trans[0].Sender != database.SystemSender {
				t.Fatalf("\t%s\tTest %d:\tShould only hold the reward transaction: %+v", failed, testID, block.Trans)
			}
			t.Logf("\t%s\tTest %d:\tShould only hold the reward transaction.", success, testID)

			if !st.IsValid() {
				t.Fatalf("\t%s\tTest %d:\tShould be valid after mining.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould be valid after mining.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the mempool holds two transactions.", testID)
		{
			st, _ := newState(t, 1)

			t1 := database.NewTx("alice", "bob", 1, 0.01)
			t2 := database.NewTx("alice", "carol", 2, 0.02)
			st.Submit(t1)
			st.Submit(t2)

			block, err := st.MinePending(context.Background(), miner)
			ifErrFailNow(t, err)

			if len(block.Trans) != 4 {
				t.Fatalf("\t%s\tTest %d:\tShould hold four transactions, got %d.", failed, testID, len(block.Trans))
			}
			t.Logf("\t%s\tTest %d:\tShould hold four transactions.", success, testID)

			reward := block.Trans[0]
			if reward.Sender != database.SystemSender || reward.Receiver != miner || reward.Amount != 6.25 || reward.Fee != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould start with the reward: %+v", failed, testID, reward)
			}
			t.Logf("\t%s\tTest %d:\tShould start with the reward.", success, testID)

			if block.Trans[1] != t2 || block.Trans[2] != t1 {
				t.Fatalf("\t%s\tTest %d:\tShould include the latest submission first: %+v", failed, testID, block.Trans[1:3])
			}
			t.Logf("\t%s\tTest %d:\tShould include the latest submission first.", success, testID)

			fees := block.Trans[3]
			if fees.Sender != database.FeesSender || fees.Receiver != miner || !almostEqual(fees.Amount, 0.03) || fees.Fee != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould end with the fee reward of 0.03: %+v", failed, testID, fees)
			}
			t.Logf("\t%s\tTest %d:\tShould end with the fee reward of 0.03.", success, testID)

			if n := st.QueryMempoolLength(); n != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould leave the mempool empty, got %d.", failed, testID, n)
			}
			t.Logf("\t%s\tTest %d:\tShould leave the mempool empty.", success, testID)

			if got := st.BalanceOf(miner); !almostEqual(got, 6.28) {
				t.Fatalf("\t%s\tTest %d:\tShould credit the miner 6.28, got %v.", failed, testID, got)
			}
			if got := st.BalanceOf("alice"); !almostEqual(got, -3) {
				t.Fatalf("\t%s\tTest %d:\tShould debit alice only the amounts, got %v.", failed, testID, got)
			}
			if got := st.BalanceOf("bob"); got != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould credit bob 1, got %v.", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould replay the balances.", success, testID)
		}
	}
}

func Test_SubmitBalance(t *testing.T) {
	t.Log("Given the need to keep pending transactions out of balances.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen submitting without mining.", testID)
		{
			st, _ := newState(t, 1)

			_, err := st.MinePending(context.Background(), "alice")
			ifErrFailNow(t, err)

			st.Submit(database.NewTx("alice", "bob", 5, 0.05))
			st.Submit(database.NewTx("alice", "bob", 5, 0.05))

			if got := st.BalanceOf("alice"); got != 6.25 {
				t.Fatalf("\t%s\tTest %d:\tShould not change the sender balance, got %v.", failed, testID, got)
			}
			if got := st.BalanceOf("bob"); got != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould not change the receiver balance, got %v.", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould not change balances.", success, testID)

			if got := st.RetrieveMempool(); len(got) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould hold both transactions, got %d.", failed, testID, len(got))
			}
			t.Logf("\t%s\tTest %d:\tShould hold both transactions.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen sending to yourself.", testID)
		{
			st, _ := newState(t, 1)

			_, err := st.AppendBlock(context.Background(), []database.Tx{
				database.NewTx(database.SystemSender, "alice", 10, 0),
				database.NewTx("alice", "alice", 4, 0),
			})
			ifErrFailNow(t, err)

			if got := st.BalanceOf("alice"); got != 10 {
				t.Fatalf("\t%s\tTest %d:\tShould net a self transfer to zero, got %v.", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould net a self transfer to zero.", success, testID)

			bals := st.QueryBalances([]string{"alice", "nobody"})
			if bals["alice"] != 10 || bals["nobody"] != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould agree with BalanceOf: %v", failed, testID, bals)
			}
			t.Logf("\t%s\tTest %d:\tShould agree with BalanceOf.", success, testID)
		}
	}
}

func Test_QuerySnapshot(t *testing.T) {
	t.Log("Given the need to describe the ledger from one view.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the chain holds a mined block and a pending send.", testID)
		{
			st, _ := newState(t, 1)

			_, err := st.MinePending(context.Background(), "alice")
			ifErrFailNow(t, err)
			st.Submit(database.NewTx("alice", "bob", 2, 0.02))

			snap := st.QuerySnapshot([]string{"alice", "bob"})
			if !snap.Valid || snap.Difficulty != st.QueryDifficulty() || snap.Blocks != 2 || snap.Uncommitted != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould report the ledger counters: %+v", failed, testID, snap)
			}
			t.Logf("\t%s\tTest %d:\tShould report the ledger counters.", success, testID)

			if snap.Balances["alice"] != 6.25 || snap.Balances["bob"] != 0 || len(snap.Balances) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould report confirmed balances only: %v", failed, testID, snap.Balances)
			}
			t.Logf("\t%s\tTest %d:\tShould report confirmed balances only.", success, testID)

			gen := st.RetrieveGenesis()
			if gen.MiningReward != 6.25 || gen.Difficulty != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould retrieve the genesis settings: %+v", failed, testID, gen)
			}
			t.Logf("\t%s\tTest %d:\tShould retrieve the genesis settings.", success, testID)
		}
	}
}

func Test_RetargetDifficulty(t *testing.T) {
	type table struct {
		name    string
		start   uint
		elapsed time.Duration
		exp     uint
	}

	tt := []table{
		{name: "fast", start: 2, elapsed: 5 * time.Second, exp: 3},
		{name: "slow", start: 3, elapsed: 25 * time.Second, exp: 2},
		{name: "floor", start: 1, elapsed: time.Hour, exp: 1},
		{name: "steady", start: 2, elapsed: 15 * time.Second, exp: 2},
		{name: "lower-edge", start: 2, elapsed: 10 * time.Second, exp: 2},
		{name: "upper-edge", start: 2, elapsed: 20 * time.Second, exp: 2},
	}

	t.Log("Given the need to retarget the difficulty.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen starting at %d with %v elapsed.", testID, tst.start, tst.elapsed)
				{
					gen := genesis.Default()
					gen.Difficulty = tst.start

					clk := newClock(0)
					st, err := state.New(state.Config{Genesis: gen, Now: clk.Now})
					ifErrFailNow(t, err)

					clk.Advance(tst.elapsed)
					st.RetargetDifficulty()

					if got := st.QueryDifficulty(); got != tst.exp {
						t.Fatalf("\t%s\tTest %d:\tShould have difficulty %d, got %d.", failed, testID, tst.exp, got)
					}
					t.Logf("\t%s\tTest %d:\tShould have difficulty %d.", success, testID, tst.exp)

					// The last mined time was reset, so no time has elapsed.
					st.RetargetDifficulty()
					if got := st.QueryDifficulty(); got != tst.exp+1 {
						t.Fatalf("\t%s\tTest %d:\tShould reset the last mined time, got %d.", failed, testID, got)
					}
					t.Logf("\t%s\tTest %d:\tShould reset the last mined time.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_MiningDifficulty(t *testing.T) {
	t.Log("Given the need to mine blocks at the current difficulty.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen blocks are mined quickly.", testID)
		{
			gen := genesis.Default()
			clk := newClock(5 * time.Second)

			st, err := state.New(state.Config{Genesis: gen, Now: clk.Now})
			ifErrFailNow(t, err)

			for i := 0; i < 3; i++ {
				difficulty := st.QueryDifficulty()

				block, err := st.MinePending(context.Background(), miner)
				ifErrFailNow(t, err)

				if !block.IsSolved(difficulty) {
					t.Fatalf("\t%s\tTest %d:\tShould solve block %d at difficulty %d: %s", failed, testID, block.Index, difficulty, block.Hash)
				}

				if got := st.QueryDifficulty(); got != difficulty+1 {
					t.Fatalf("\t%s\tTest %d:\tShould raise the difficulty to %d, got %d.", failed, testID, difficulty+1, got)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould solve each block and raise the difficulty.", success, testID)

			if st.QueryChainLength() != 4 || !st.IsValid() {
				t.Fatalf("\t%s\tTest %d:\tShould hold a valid chain of 4 blocks.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould hold a valid chain of 4 blocks.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen appending a block directly.", testID)
		{
			st, _ := newState(t, 2)

			block, err := st.AppendBlock(context.Background(), []database.Tx{database.NewTx("a", "b", 1, 0)})
			ifErrFailNow(t, err)

			latest := st.RetrieveLatestBlock()
			if block.Index != 1 || latest.Hash != block.Hash || block.PrevBlockHash != st.RetrieveChain()[0].Hash {
				t.Fatalf("\t%s\tTest %d:\tShould append the block: %+v", failed, testID, block)
			}
			if !strings.HasPrefix(block.Hash, "00") {
				t.Fatalf("\t%s\tTest %d:\tShould mine the block at difficulty 2: %s", failed, testID, block.Hash)
			}
			t.Logf("\t%s\tTest %d:\tShould append the block.", success, testID)

			if st.QueryDifficulty() != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould not retarget the difficulty.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not retarget the difficulty.", success, testID)
		}
	}
}

func Test_MinePendingCancel(t *testing.T) {
	t.Log("Given the need to stop a mining operation.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the context is already cancelled.", testID)
		{
			st, _ := newState(t, 1)

			t1 := database.NewTx("alice", "bob", 1, 0.01)
			t2 := database.NewTx("bob", "alice", 2, 0.02)
			st.Submit(t1)
			st.Submit(t2)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := st.MinePending(ctx, miner)
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("\t%s\tTest %d:\tShould get back a cancelled error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get back a cancelled error.", success, testID)

			mp := st.RetrieveMempool()
			if len(mp) != 2 || mp[0] != t1 || mp[1] != t2 {
				t.Fatalf("\t%s\tTest %d:\tShould restore the mempool in order: %+v", failed, testID, mp)
			}
			t.Logf("\t%s\tTest %d:\tShould restore the mempool in order.", success, testID)

			if st.QueryChainLength() != 1 || st.QueryDifficulty() != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould leave the chain and difficulty alone.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould leave the chain and difficulty alone.", success, testID)
		}
	}
}

func Test_Concurrency(t *testing.T) {
	t.Log("Given the need to use the ledger from many goroutines.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen submitting while mining.", testID)
		{
			st, _ := newState(t, 1)

			const submitters = 4
			const perSubmitter = 25

			var wg sync.WaitGroup
			wg.Add(submitters + 1)

			for g := 0; g < submitters; g++ {
				go func() {
					defer wg.Done()
					for i := 0; i < perSubmitter; i++ {
						st.Submit(database.NewTx("alice", "bob", 1, 0))
						st.BalanceOf("bob")
					}
				}()
			}

			go func() {
				defer wg.Done()
				for i := 0; i < 5; i++ {
					if _, err := st.MinePending(context.Background(), miner); err != nil {
						t.Error(err)
						return
					}
				}
			}()

			wg.Wait()

			mined := int(st.BalanceOf("bob"))
			pending := st.QueryMempoolLength()
			if mined+pending != submitters*perSubmitter {
				t.Fatalf("\t%s\tTest %d:\tShould account for every transaction, mined %d pending %d.", failed, testID, mined, pending)
			}
			t.Logf("\t%s\tTest %d:\tShould account for every transaction.", success, testID)

			if !st.IsValid() {
				t.Fatalf("\t%s\tTest %d:\tShould be valid.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould be valid.", success, testID)
		}
	}
}
