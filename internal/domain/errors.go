package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUnknownAssetClass   = errors.New("unknown asset class")
	ErrSymbolNotResolvable = errors.New("symbol not resolvable by any data source")
)
