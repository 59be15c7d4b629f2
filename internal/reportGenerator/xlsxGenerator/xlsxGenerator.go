package xlsxGenerator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/investbi/portfolio_tracker_bot/internal/model"
	"github.com/investbi/portfolio_tracker_bot/utils"
	"github.com/xuri/excelize/v2"
)

const dateLayout = "2006-01-02"

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

// Generate renders one valuation into a workbook: a performance sheet
// with the patrimony and returns series, and an allocation sheet with
// unit holdings per asset.
func (g *XLSXGenerator) Generate(ctx context.Context, v model.Valuation) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	if len(v.Patrimony) == 0 {
		return nil, "", errors.New("empty valuation")
	}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err := g.fillPerformanceSheet(f, v); err != nil {
		return nil, "", err
	}

	if err := g.fillAllocationSheet(f, v.Allocation); err != nil {
		return nil, "", err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XLSXGenerator) headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#cfe2f3"},
		},
	})
}

func (g *XLSXGenerator) fillPerformanceSheet(f *excelize.File, v model.Valuation) error {
	sheetName := "Performance"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	if err := f.MergeCell(sheetName, "A1", "D1"); err != nil {
		return err
	}
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("Portfolio performance as of %s", v.AsOf.Format(dateLayout)))

	styleID, err := g.headerStyle(f)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", "A1", styleID); err != nil {
		return err
	}

	_ = f.SetCellStr(sheetName, "A2", "date")
	_ = f.SetCellStr(sheetName, "B2", "patrimony")
	_ = f.SetCellStr(sheetName, "C2", "daily return")
	_ = f.SetCellStr(sheetName, "D2", "cumulative return")

	for i := range v.Patrimony {
		row := i + 3
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), v.Patrimony[i].Date.Format(dateLayout))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), v.Patrimony[i].Value.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), v.Returns[i].Value.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), v.CumulativeReturns[i].Value.InexactFloat64())
	}

	return nil
}

func (g *XLSXGenerator) fillAllocationSheet(f *excelize.File, table model.AllocationTable) error {
	sheetName := "Allocation"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	_ = f.SetCellStr(sheetName, "A1", "date")
	for j, asset := range table.Assets {
		cell, err := excelize.CoordinatesToCellName(j+2, 1)
		if err != nil {
			return err
		}
		_ = f.SetCellStr(sheetName, cell, asset)
	}

	for i, row := range table.Rows {
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", i+2), row.Date.Format(dateLayout))
		for j := range table.Assets {
			cell, err := excelize.CoordinatesToCellName(j+2, i+2)
			if err != nil {
				return err
			}
			_ = f.SetCellValue(sheetName, cell, row.Units[j].InexactFloat64())
		}
	}

	return nil
}
