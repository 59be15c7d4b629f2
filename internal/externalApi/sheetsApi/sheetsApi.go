package sheetsApi

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/investbi/portfolio_tracker_bot/config"
	"github.com/investbi/portfolio_tracker_bot/internal/externalApi"
	"github.com/investbi/portfolio_tracker_bot/internal/model"
	"github.com/investbi/portfolio_tracker_bot/utils"
)

// Expected header columns of the wallet spreadsheet.
const (
	colDate   = "date"
	colAsset  = "asset_name"
	colClass  = "asset_type"
	colAmount = "value"
)

// SheetsApi fetches the wallet ledger from a public Google Sheets CSV
// export.
type SheetsApi struct {
	client *resty.Client
	key    string
}

func New(cfg *config.Config) *SheetsApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.Sheets.Url)
	return &SheetsApi{client: client, key: cfg.Sheets.Key}
}

// GetLedger returns the raw wallet rows in spreadsheet order. Fetch or
// authorization failures surface as externalApi.ErrLedgerUnavailable.
func (a *SheetsApi) GetLedger(ctx context.Context) ([]model.LedgerRecord, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "SheetsApi.GetLedger"

	slog.Debug("GetLedger start", slog.String("rqID", rqID), slog.String("op", op))

	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"key": a.key, "output": "csv"}).
		Get("")

	if err != nil {
		slog.Error("error while dialing sheets", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, fmt.Errorf("%w: %s", externalApi.ErrLedgerUnavailable, err)
	}

	if resp.IsError() {
		slog.Error("sheets returned error status", slog.String("rqID", rqID), slog.String("op", op), slog.Int("status", resp.StatusCode()))
		return nil, fmt.Errorf("%w: status %d", externalApi.ErrLedgerUnavailable, resp.StatusCode())
	}

	records, err := a.parseCSV(resp.Body())
	if err != nil {
		slog.Error("can't parse ledger csv", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	slog.Debug("GetLedger request complete", slog.String("rqID", rqID), slog.String("op", op), slog.Int("rows", len(records)))

	return records, nil
}

func (a *SheetsApi) parseCSV(body []byte) ([]model.LedgerRecord, error) {
	reader := csv.NewReader(bytes.NewReader(body))
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable csv: %s", externalApi.ErrLedgerUnavailable, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty csv", externalApi.ErrLedgerUnavailable)
	}

	idx := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colDate, colAsset, colClass, colAmount} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("%w: ledger header missing column %q", externalApi.ErrLedgerUnavailable, required)
		}
	}

	records := make([]model.LedgerRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, model.LedgerRecord{
			Date:       row[idx[colDate]],
			AssetName:  row[idx[colAsset]],
			AssetClass: row[idx[colClass]],
			Amount:     row[idx[colAmount]],
		})
	}

	return records, nil
}
