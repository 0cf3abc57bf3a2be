package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

type balance struct {
	Account string  `json:"account"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your confirmed balance.",
	RunE:  balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:3000", "Url of the node.")
}

func balanceRun(cmd *cobra.Command, args []string) error {
	w, err := loadWallet()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "For Account:", w.Address())

	bal, err := queryBalance(url, w.Address())
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), bal.Balance)
	return nil
}

func queryBalance(url string, address string) (balance, error) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/balances/%s", url, address))
	if err != nil {
		return balance{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return balance{}, fmt.Errorf("node responded with status %d", resp.StatusCode)
	}

	var bal balance
	if err := json.NewDecoder(resp.Body).Decode(&bal); err != nil {
		return balance{}, err
	}

	return bal, nil
}
