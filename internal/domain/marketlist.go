package domain

import "fmt"

// ListType names one of the per-exchange symbol lists a user can maintain.
type ListType string

const (
	ListBlacklist  ListType = "blacklist"
	ListWhitelist  ListType = "whitelist"
	ListWalletLock ListType = "wallet_lock"
)

// ParseListType validates a wire-format list type.
func ParseListType(s string) (ListType, error) {
	switch ListType(s) {
	case ListBlacklist, ListWhitelist, ListWalletLock:
		return ListType(s), nil
	default:
		return "", fmt.Errorf("domain: unknown list type %q", s)
	}
}

// ListCounts holds per-list membership counts for one exchange.
type ListCounts struct {
	Whitelist  int
	Blacklist  int
	WalletLock int
}

// ListMembership is the set of list flags for one (exchange, symbol) pair,
// used to decorate snapshots after a poll.
type ListMembership struct {
	Blacklisted  bool
	Whitelisted  bool
	WalletLocked bool
}
