// Package resultsexport writes season standings to XLSX.
package resultsexport

import (
	"context"
	"fmt"
	"io"
	"time"

	resultsdb "github.com/Black-And-White-Club/tournament-results/app/modules/results/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Rankings"

var header = []any{"Rank", "Player ID", "Points", "Last Updated"}

// RankingLister is the part of the results repository the export reads.
type RankingLister interface {
	ListRankings(ctx context.Context, db bun.IDB, categoryID uuid.UUID, seasonYear int) ([]resultsdb.PlayerRanking, error)
}

// ExportRankings loads a category's standings for one season and writes them to w.
func ExportRankings(ctx context.Context, lister RankingLister, categoryID uuid.UUID, seasonYear int, w io.Writer) (int, error) {
	rankings, err := lister.ListRankings(ctx, nil, categoryID, seasonYear)
	if err != nil {
		return 0, fmt.Errorf("resultsexport.ExportRankings: %w", err)
	}
	if err := WriteRankings(w, categoryID, seasonYear, rankings); err != nil {
		return 0, err
	}
	return len(rankings), nil
}

// WriteRankings renders rankings, already sorted by points descending, as a single-sheet workbook.
// Tied players share a rank and the next rank skips accordingly (1, 1, 3).
func WriteRankings(w io.Writer, categoryID uuid.UUID, seasonYear int, rankings []resultsdb.PlayerRanking) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	title := fmt.Sprintf("Category %s, season %d", categoryID, seasonYear)
	if err := f.SetCellValue(sheetName, "A1", title); err != nil {
		return fmt.Errorf("failed to write title: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A2", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	rank := 0
	for i, r := range rankings {
		if i == 0 || r.CurrentPoints != rankings[i-1].CurrentPoints {
			rank = i + 1
		}
		axis, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}
		row := []any{rank, r.PlayerID.String(), r.CurrentPoints, r.LastUpdated.UTC().Format(time.RFC3339)}
		if err := f.SetSheetRow(sheetName, axis, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(sheetName, "B", "B", 38); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "D", "D", 22); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
