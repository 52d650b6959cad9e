package extract

import (
	"context"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractXLSX renders every sheet row as one paragraph. The first row of a
// sheet is treated as the header, so a row reads "name: Alice; department:
// Engineering".
func extractXLSX(_ context.Context, path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var paragraphs []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", err
		}
		if len(rows) == 0 {
			continue
		}
		header := rows[0]
		for _, row := range rows[1:] {
			if line := formatRow(header, row); line != "" {
				paragraphs = append(paragraphs, line)
			}
		}
	}
	return strings.Join(paragraphs, "\n\n"), nil
}

func formatRow(header, row []string) string {
	parts := make([]string, 0, len(row))
	for i, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if i < len(header) && strings.TrimSpace(header[i]) != "" {
			parts = append(parts, strings.TrimSpace(header[i])+": "+cell)
		} else {
			parts = append(parts, cell)
		}
	}
	return strings.Join(parts, "; ")
}
