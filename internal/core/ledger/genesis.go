package ledger

// Genesis account addresses for the demo portfolio
const (
	ColdWalletAddress = "rK...ColdWallet"
	HotWalletAddress  = "rOperational...HotWallet"
	UserWalletAddress = "rU...UserWallet"
)

// SeedDemo loads the enterprise demo portfolio: three issued assets with
// their trustline holders and the XRP/USD pool.
func SeedDemo(s *Store) error {
	usd, err := s.CreateAsset("USD", "10,000,000", ColdWalletAddress,
		AssetFlags{RequireAuth: true, DefaultRipple: true})
	if err != nil {
		return err
	}
	eur, err := s.CreateAsset("EUR", "5,000,000", ColdWalletAddress,
		AssetFlags{RequireAuth: true, DefaultRipple: true})
	if err != nil {
		return err
	}
	gold, err := s.CreateAsset("GOLD", "50,000", ColdWalletAddress,
		AssetFlags{Freeze: true})
	if err != nil {
		return err
	}

	seedHolders := []struct {
		assetID string
		holder  Holder
	}{
		{usd.ID, Holder{Address: UserWalletAddress, Balance: "25000.00", Limit: "1000000", Status: HolderActive, Tier: 1}},
		{usd.ID, Holder{Address: HotWalletAddress, Balance: "500000.00", Limit: "10000000", Status: HolderActive, Tier: 2}},
		{eur.ID, Holder{Address: UserWalletAddress, Balance: "1200.50", Limit: "50000", Status: HolderActive, Tier: 1}},
		{gold.ID, Holder{Address: UserWalletAddress, Balance: "15.00", Limit: "100", Status: HolderFrozen}},
	}
	for _, sh := range seedHolders {
		if err := s.AddHolder(sh.assetID, sh.holder); err != nil {
			return err
		}
	}

	return s.CreatePool(PairKey("XRP", "USD"), HotWalletAddress, "1000", "550", 500)
}
