package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/investbi/portfolio_tracker_bot/internal/model"
	"github.com/investbi/portfolio_tracker_bot/internal/timeseries"
	"github.com/shopspring/decimal"
)

// Dates in the wallet spreadsheet are dd/mm/yyyy.
const ledgerDateLayout = "02/01/2006"

// NormalizeLedger validates raw wallet rows into typed transactions
// sorted by trade date ascending. The sort is stable, so rows sharing
// a date keep their spreadsheet order. Any invalid row fails the whole
// ledger.
func NormalizeLedger(rows []model.LedgerRecord) ([]model.Transaction, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("ledger has no rows")
	}

	txs := make([]model.Transaction, 0, len(rows))
	for i, row := range rows {
		date, err := time.Parse(ledgerDateLayout, strings.TrimSpace(row.Date))
		if err != nil {
			return nil, &MalformedLedgerRowError{Row: i, Reason: fmt.Sprintf("bad date %q", row.Date)}
		}

		class, err := model.ParseAssetClass(strings.TrimSpace(row.AssetClass))
		if err != nil {
			return nil, &MalformedLedgerRowError{Row: i, Reason: err.Error()}
		}

		asset := strings.TrimSpace(row.AssetName)
		if asset == "" {
			return nil, &MalformedLedgerRowError{Row: i, Reason: "empty asset name"}
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(row.Amount))
		if err != nil {
			return nil, &MalformedLedgerRowError{Row: i, Reason: fmt.Sprintf("bad amount %q", row.Amount)}
		}
		if !amount.IsPositive() {
			return nil, &MalformedLedgerRowError{Row: i, Reason: fmt.Sprintf("amount %s is not positive", amount)}
		}

		txs = append(txs, model.Transaction{
			TradeDate: timeseries.Normalize(date),
			AssetID:   asset,
			Class:     class,
			Amount:    amount,
		})
	}

	sort.SliceStable(txs, func(i, j int) bool { return txs[i].TradeDate.Before(txs[j].TradeDate) })

	return txs, nil
}

// Inception is the portfolio's first trade date. Expects the sorted
// output of NormalizeLedger.
func Inception(txs []model.Transaction) time.Time {
	return txs[0].TradeDate
}

// PartitionByClass groups the distinct assets of a ledger by asset
// class, keeping first-appearance order inside each class.
func PartitionByClass(txs []model.Transaction) map[model.AssetClass][]string {
	out := make(map[model.AssetClass][]string)
	seen := make(map[string]struct{})
	for _, tx := range txs {
		if _, ok := seen[tx.AssetID]; ok {
			continue
		}
		seen[tx.AssetID] = struct{}{}
		out[tx.Class] = append(out[tx.Class], tx.AssetID)
	}
	return out
}
