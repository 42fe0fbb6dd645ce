package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"injaaz-backend/models"
)

const reportSheet = "Site Visit Report"

// writeExcel renders the visit as a single-sheet workbook: visit info block
// on top, then one row per report item with its photo links.
func (e *Engine) writeExcel(visit *models.Visit, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(reportSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F4E79"}},
	})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}

	widths := map[string]float64{
		"A": 22, "B": 24, "C": 42, "D": 10, "E": 18, "F": 36, "G": 60,
	}
	for col, w := range widths {
		if err := f.SetColWidth(reportSheet, col, col, w); err != nil {
			return err
		}
	}

	row := 1
	setCell := func(col string, value any) {
		_ = f.SetCellValue(reportSheet, fmt.Sprintf("%s%d", col, row), value)
	}

	setCell("A", "Site Visit Report")
	_ = f.SetCellStyle(reportSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("G%d", row), headerStyle)
	row += 2

	keys := make([]string, 0, len(visit.VisitInfo))
	for k := range visit.VisitInfo {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		setCell("A", humanizeKey(k))
		_ = f.SetCellStyle(reportSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
		setCell("B", visit.VisitInfo[k])
		row++
	}
	setCell("A", "Visit ID")
	_ = f.SetCellStyle(reportSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
	setCell("B", visit.VisitID)
	row += 2

	itemHeaders := []struct {
		col   string
		title string
	}{
		{"A", "Asset"},
		{"B", "System"},
		{"C", "Description"},
		{"D", "Qty"},
		{"E", "Brand"},
		{"F", "Comments"},
		{"G", "Photos"},
	}
	for _, h := range itemHeaders {
		setCell(h.col, h.title)
	}
	_ = f.SetCellStyle(reportSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("G%d", row), headerStyle)
	row++

	for _, item := range visit.ReportItems {
		setCell("A", item.Asset)
		setCell("B", item.System)
		setCell("C", item.Description)
		setCell("D", item.Quantity)
		setCell("E", item.Brand)
		setCell("F", item.Comments)
		setCell("G", strings.Join(item.PhotoURLs, "\n"))
		row++
	}

	return f.SaveAs(path)
}
