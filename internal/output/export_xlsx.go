package output

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Calmarius/pogoproto/internal/gamedata"
	"github.com/Calmarius/pogoproto/internal/rank"
)

// ExportXLSX writes the overall ranking ordered by DPS into
// <outDir>/<reportName>_<yyyymmdd>.xlsx and returns the path.
func ExportXLSX(outDir, reportName string, t *gamedata.Tables, r *rank.Rankings) (string, error) {
	f := excelize.NewFile()
	sheet := "Sheet1"
	headers := []string{"Creature", "Fast", "Charged", "msDPS", "DPS", "True Power", "Restricted", "Legacy"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return "", err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for i, res := range rank.Sorted(r.Overall, rank.ByDPS) {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), creatureName(t, res))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), abilityName(t, res.FastID))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), abilityName(t, res.ChargedID))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), res.MsDPS)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), res.DPS)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), res.TruePower)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), res.Restricted)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), res.Legacy)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	if reportName == "" {
		reportName = "rankings"
	}
	timestamp := time.Now().Format("20060102")
	path := filepath.Join(outDir, fmt.Sprintf("%s_%s.xlsx", reportName, timestamp))
	if err := f.SaveAs(path); err != nil {
		return "", err
	}
	return path, nil
}
