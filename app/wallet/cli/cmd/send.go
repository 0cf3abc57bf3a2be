package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

var (
	to     string
	amount float64
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign a transaction and submit it to the node",
	RunE:  sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:3000", "Url of the node.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address of the receiver.")
	sendCmd.Flags().Float64VarP(&amount, "amount", "v", 0, "Amount to send, a 1% fee is added.")
	sendCmd.MarkFlagRequired("to")
}

func sendRun(cmd *cobra.Command, args []string) error {
	w, err := loadWallet()
	if err != nil {
		return err
	}

	tx, err := submitTx(url, w, to, amount)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "submitted %s fee[%v] sig[%s]\n", tx, tx.Fee, tx.Signature)
	return nil
}

// submitTx signs a transaction from the wallet and submits it to the node.
// The node checks the balance, the wallet doesn't.
func submitTx(url string, w *wallet.Wallet, to string, amount float64) (database.Tx, error) {
	tx, err := w.SignTx(database.NewTx(w.Address(), to, amount, wallet.Fee(amount)))
	if err != nil {
		return database.Tx{}, err
	}

	data, err := json.Marshal(tx)
	if err != nil {
		return database.Tx{}, err
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/tx/submit", url), "application/json", bytes.NewBuffer(data))
	if err != nil {
		return database.Tx{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var er struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&er)
		return database.Tx{}, fmt.Errorf("node rejected transaction: status[%d]: %s", resp.StatusCode, er.Error)
	}

	return tx, nil
}
