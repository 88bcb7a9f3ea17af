package domain

// AssetClass determines which source pipeline resolves an instrument's price.
// Wire names match the persisted position format ("stock", "bond", "p2p").
type AssetClass string

const (
	AssetCrypto         AssetClass = "crypto"
	AssetEquity         AssetClass = "stock"
	AssetCashEquivalent AssetClass = "bond"
	AssetP2P            AssetClass = "p2p"
	AssetCash           AssetClass = "cash"
)

var supportedAssetClass = map[AssetClass]bool{
	AssetCrypto:         true,
	AssetEquity:         true,
	AssetCashEquivalent: true,
	AssetP2P:            true,
	AssetCash:           true,
}

func ValidAssetClass(c AssetClass) bool { return supportedAssetClass[c] }

// Static classes never hit a network source in the live fallback branch;
// their prices are generated from the position's entry price.
func (c AssetClass) Static() bool {
	return c == AssetCashEquivalent || c == AssetP2P || c == AssetCash
}
