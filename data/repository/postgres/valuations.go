package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/investbi/portfolio_tracker_bot/data/repository"
	"github.com/investbi/portfolio_tracker_bot/internal/converter/dbConverter"
	"github.com/investbi/portfolio_tracker_bot/internal/model"
	"github.com/investbi/portfolio_tracker_bot/internal/model/dbModel"
	"github.com/investbi/portfolio_tracker_bot/utils"
)

// InsertValuation stores one successful pipeline run with its
// patrimony/returns points and allocation table, atomically. Prior
// runs stay untouched so the latest stored result remains valid until
// a newer run lands.
func (p *Postgres) InsertValuation(ctx context.Context, v model.Valuation) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("InsertValuation start", slog.String("rqID", rqID))
	defer func() {
		if err != nil {
			slog.Error("InsertValuation failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertValuation completed", slog.String("rqID", rqID))
		}
	}()

	return p.WithinTransaction(ctx, func(ctx context.Context) error {
		var runID int64
		query := `INSERT INTO valuation_runs(as_of, inception) VALUES($1, $2) RETURNING run_id`
		if err := p.txOrDb(ctx).QueryRowxContext(ctx, query, v.AsOf, v.Inception).Scan(&runID); err != nil {
			return err
		}

		if err := p.insertValuationPoints(ctx, runID, v); err != nil {
			return err
		}

		return p.insertAllocationPoints(ctx, runID, v.Allocation)
	})
}

func (p *Postgres) insertValuationPoints(ctx context.Context, runID int64, v model.Valuation) error {
	if len(v.Patrimony) == 0 {
		return nil
	}
	if len(v.Returns) != len(v.Patrimony) || len(v.CumulativeReturns) != len(v.Patrimony) {
		return fmt.Errorf("series length mismatch: patrimony %d, returns %d, cumulative %d",
			len(v.Patrimony), len(v.Returns), len(v.CumulativeReturns))
	}

	sb := strings.Builder{}
	args := make([]any, 0, len(v.Patrimony)*5)

	sb.WriteString(`INSERT INTO valuation_points (run_id, dt, patrimony, daily_return, cumulative_return) VALUES `)

	for i := range v.Patrimony {
		args = append(args, runID, v.Patrimony[i].Date, v.Patrimony[i].Value, v.Returns[i].Value, v.CumulativeReturns[i].Value)

		start := i*5 + 1
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
			start, start+1, start+2, start+3, start+4,
		))

		if i < len(v.Patrimony)-1 {
			sb.WriteString(",")
		}
	}

	_, err := p.txOrDb(ctx).ExecContext(ctx, sb.String(), args...)
	return err
}

func (p *Postgres) insertAllocationPoints(ctx context.Context, runID int64, table model.AllocationTable) error {
	if len(table.Rows) == 0 || len(table.Assets) == 0 {
		return nil
	}

	sb := strings.Builder{}
	args := make([]any, 0, len(table.Rows)*len(table.Assets)*4)

	sb.WriteString(`INSERT INTO allocation_points (run_id, dt, asset, units) VALUES `)

	n := 0
	for _, row := range table.Rows {
		for j, asset := range table.Assets {
			if n > 0 {
				sb.WriteString(",")
			}
			args = append(args, runID, row.Date, asset, row.Units[j])
			start := n*4 + 1
			sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d)", start, start+1, start+2, start+3))
			n++
		}
	}

	_, err := p.txOrDb(ctx).ExecContext(ctx, sb.String(), args...)
	return err
}

// GetLatestValuation returns the most recently stored run, or
// repository.ErrNotFound when nothing has been stored yet.
func (p *Postgres) GetLatestValuation(ctx context.Context) (v model.Valuation, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("GetLatestValuation start", slog.String("rqID", rqID))
	defer func() {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("GetLatestValuation failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetLatestValuation completed", slog.String("rqID", rqID))
		}
	}()

	run := dbModel.ValuationRun{}
	query := `SELECT run_id, as_of, inception, dt_create FROM valuation_runs ORDER BY run_id DESC LIMIT 1`
	err = p.txOrDb(ctx).GetContext(ctx, &run, query)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Valuation{}, repository.ErrNotFound
		}
		return model.Valuation{}, err
	}

	points := []dbModel.ValuationPoint{}
	query = `SELECT run_id, dt, patrimony, daily_return, cumulative_return FROM valuation_points WHERE run_id = $1 ORDER BY dt`
	if err = p.txOrDb(ctx).SelectContext(ctx, &points, query, run.RunID); err != nil {
		return model.Valuation{}, err
	}

	allocPoints := []dbModel.AllocationPoint{}
	query = `SELECT run_id, dt, asset, units FROM allocation_points WHERE run_id = $1 ORDER BY dt, asset`
	if err = p.txOrDb(ctx).SelectContext(ctx, &allocPoints, query, run.RunID); err != nil {
		return model.Valuation{}, err
	}

	return dbConverter.ConvertValuation(run, points, allocPoints), nil
}
