package domain

// Instrument is the identity a price is resolved for. Comparable, so it can
// key result maps: two positions with the same symbol but different classes
// are distinct instruments.
type Instrument struct {
	Symbol string
	Class  AssetClass
}

// Position is a user-entered holding. Multiplier is the number of units held.
type Position struct {
	ID         string     `json:"id"`
	Symbol     string     `json:"symbol"`
	Name       string     `json:"name"`
	Class      AssetClass `json:"assetClass"`
	EntryPrice float64    `json:"entryPrice"`
	Multiplier float64    `json:"multiplier"`
	Notes      string     `json:"notes,omitempty"`
}

func (p Position) Instrument() Instrument {
	return Instrument{Symbol: p.Symbol, Class: p.Class}
}
