package domain

// Wallet is a named address tracked on one or more networks.
type Wallet struct {
	Name     string
	Address  string
	Networks []string
}

// Pair is one (wallet, network) unit of work in a sweep.
type Pair struct {
	Wallet  Wallet
	Network Network
}

func (p Pair) String() string {
	return p.Wallet.Name + "@" + p.Network.Name
}

// Pairs expands wallets into (wallet, network) pairs in wallet order, then in
// each wallet's network order. Networks without an entry are skipped.
func Pairs(wallets []Wallet, networks map[string]Network) []Pair {
	var pairs []Pair
	for _, w := range wallets {
		for _, name := range w.Networks {
			n, ok := networks[name]
			if !ok {
				continue
			}
			pairs = append(pairs, Pair{Wallet: w, Network: n})
		}
	}
	return pairs
}
