// Package export writes decision history to XLSX workbooks for safety
// audits.
package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/schem-safety/permit-cli/internal/model"
)

var header = []string{
	"ID", "Created At", "Input", "Band", "Risk Score", "Hazard Type", "Decision", "Report Path",
}

// WriteDecisions writes the given decisions to an XLSX file at path.
func WriteDecisions(path string, decisions []model.Decision) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Decisions")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	headerRow := sheet.AddRow()
	for _, h := range header {
		headerRow.AddCell().SetString(h)
	}

	for _, d := range decisions {
		row := sheet.AddRow()
		row.AddCell().SetString(d.ID)
		row.AddCell().SetString(d.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
		row.AddCell().SetString(d.Input)
		row.AddCell().SetString(string(d.Band))
		row.AddCell().SetFloat(d.RiskScore)
		row.AddCell().SetString(d.HazardType)
		row.AddCell().SetString(d.Message)
		row.AddCell().SetString(d.ReportPath)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
