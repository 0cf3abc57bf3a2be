// Package nameservice maintains the set of wallets the node knows by name and
// provides a name lookup for their addresses.
package nameservice

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
)

// Set of errors returned by the name service.
var (
	ErrNameExists = errors.New("name already registered")
	ErrNotFound   = errors.New("name not found")
)

// Entry describes a registered wallet.
type Entry struct {
	Name    string
	Address string
	Role    wallet.Role
}

// NameService maintains a map of names to wallets and of addresses to names.
type NameService struct {
	mu       sync.RWMutex
	wallets  map[string]*wallet.Wallet
	accounts map[string]string
	order    []string
}

// New constructs an empty name service.
func New() *NameService {
	return &NameService{
		wallets:  make(map[string]*wallet.Wallet),
		accounts: make(map[string]string),
	}
}

// Add registers an existing wallet under the name.
func (ns *NameService) Add(name string, w *wallet.Wallet) error {
	if name == "" {
		return errors.New("name is required")
	}

	ns.mu.Lock()
	defer ns.mu.Unlock()

	if _, exists := ns.wallets[name]; exists {
		return fmt.Errorf("%w: %q", ErrNameExists, name)
	}

	ns.wallets[name] = w
	ns.accounts[w.Address()] = name
	ns.order = append(ns.order, name)

	return nil
}

// Register creates a new wallet with the role and registers it under the name.
func (ns *NameService) Register(name string, role wallet.Role) (*wallet.Wallet, error) {
	w, err := wallet.New(role)
	if err != nil {
		return nil, err
	}

	if err := ns.Add(name, w); err != nil {
		return nil, err
	}

	return w, nil
}

// LoadFolder registers every .ecdsa key file found under root, named after
// the file. Keys whose name starts with "miner" get the miner role.
func (ns *NameService) LoadFolder(root string) error {
	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != ".ecdsa" {
			return nil
		}

		name := strings.TrimSuffix(path.Base(fileName), ".ecdsa")

		role := wallet.Regular
		if strings.HasPrefix(name, "miner") {
			role = wallet.Miner
		}

		w, err := wallet.Load(fileName, role)
		if err != nil {
			return err
		}

		return ns.Add(name, w)
	}

	if err := filepath.Walk(root, fn); err != nil {
		return fmt.Errorf("walking directory: %w", err)
	}

	return nil
}

// Wallet returns the wallet registered under the name.
func (ns *NameService) Wallet(name string) (*wallet.Wallet, error) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	w, exists := ns.wallets[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	return w, nil
}

// Lookup returns the name for the specified address. Unknown addresses are
// returned as is.
func (ns *NameService) Lookup(address string) string {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	name, exists := ns.accounts[address]
	if !exists {
		return address
	}
	return name
}

// Entries returns the registered wallets in registration order.
func (ns *NameService) Entries() []Entry {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	entries := make([]Entry, len(ns.order))
	for i, name := range ns.order {
		w := ns.wallets[name]
		entries[i] = Entry{
			Name:    name,
			Address: w.Address(),
			Role:    w.Role(),
		}
	}

	return entries
}
