package model

import "fmt"

// AssetClass selects the market data endpoint used to load an asset's
// price history.
type AssetClass string

const (
	AssetClassStock AssetClass = "stock"
	AssetClassFund  AssetClass = "fund"
	AssetClassETF   AssetClass = "etf"
)

var AssetClasses = []AssetClass{AssetClassStock, AssetClassFund, AssetClassETF}

func ParseAssetClass(s string) (AssetClass, error) {
	switch AssetClass(s) {
	case AssetClassStock, AssetClassFund, AssetClassETF:
		return AssetClass(s), nil
	}
	return "", fmt.Errorf("unknown asset class %q", s)
}
