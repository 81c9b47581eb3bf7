// Package tabular codificadores de la tabla de exportación: CSV, XLSX y PDF.
package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/jhoicas/inventario-sync/internal/application/export"
)

// CSV codificador CSV con encabezado en la primera fila.
type CSV struct {
	Comma rune // 0 = ','
}

var _ export.Encoder = CSV{}

func (CSV) Format() string      { return "csv" }
func (CSV) ContentType() string { return "text/csv; charset=utf-8" }

// Encode escribe encabezado y filas.
func (c CSV) Encode(t export.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if c.Comma != 0 {
		w.Comma = c.Comma
	}
	if err := w.Write(t.Columns); err != nil {
		return nil, fmt.Errorf("csv: encabezado: %w", err)
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = fmt.Sprint(row[i])
			}
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("csv: fila: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	return buf.Bytes(), nil
}
