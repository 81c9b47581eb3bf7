// Package export convierte la vista proyectada en una tabla y la entrega a un codificador
// y a un destino de archivo.
package export

import (
	"time"

	"github.com/jhoicas/inventario-sync/internal/domain/entity"
)

// Columnas fijas de la exportación.
const (
	ColSKU         = "SKU"
	ColName        = "Name"
	ColCategory    = "Category"
	ColQuantity    = "Quantity"
	ColStatus      = "Status"
	ColLastUpdated = "LastUpdated"

	// Solo con Options.IncludeDetails.
	ColImage       = "Image"
	ColDescription = "Description"
)

// SheetName nombre de la hoja en formatos que la soportan.
const SheetName = "Inventory"

// Table filas de columnas con nombre. Quantity se entrega como int; el resto como string.
type Table struct {
	Sheet   string
	Title   string // encabezado en formatos de documento (PDF)
	Columns []string
	Rows    [][]any
}

// Options etiquetas y formato de la exportación.
type Options struct {
	NotAvailable   string
	LowStockLabel  string
	InStockLabel   string
	TimeLayout     string
	Location       *time.Location
	IncludeDetails bool
}

// DefaultOptions etiquetas por defecto.
func DefaultOptions() Options {
	return Options{
		NotAvailable:  "N/A",
		LowStockLabel: "Low Stock",
		InStockLabel:  "In Stock",
		TimeLayout:    "2006-01-02 15:04:05",
		Location:      time.Local,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.NotAvailable == "" {
		o.NotAvailable = d.NotAvailable
	}
	if o.LowStockLabel == "" {
		o.LowStockLabel = d.LowStockLabel
	}
	if o.InStockLabel == "" {
		o.InStockLabel = d.InStockLabel
	}
	if o.TimeLayout == "" {
		o.TimeLayout = d.TimeLayout
	}
	if o.Location == nil {
		o.Location = d.Location
	}
	return o
}

// Snapshot transforma la vista en tabla. Sin red ni acceso al caché.
func Snapshot(records []entity.InventoryRecord, opts Options) Table {
	opts = opts.withDefaults()
	t := Table{Sheet: SheetName}
	if opts.IncludeDetails {
		t.Columns = []string{ColImage, ColSKU, ColName, ColCategory, ColDescription, ColQuantity, ColStatus, ColLastUpdated}
	} else {
		t.Columns = []string{ColSKU, ColName, ColCategory, ColQuantity, ColStatus, ColLastUpdated}
	}
	t.Rows = make([][]any, 0, len(records))

	for _, rec := range records {
		var sku, name, image, description string
		category := opts.NotAvailable
		if p := rec.ProductDetails; p != nil {
			sku, name, image, description = p.SKU, p.Name, p.ImageRef, p.Description
			if c := p.CategoryName(); c != "" {
				category = c
			}
		}
		if image == "" {
			image = opts.NotAvailable
		}
		if description == "" {
			description = opts.NotAvailable
		}
		status := opts.InStockLabel
		if rec.LowStock() {
			status = opts.LowStockLabel
		}
		updated := opts.NotAvailable
		if !rec.LastUpdated.IsZero() {
			updated = rec.LastUpdated.In(opts.Location).Format(opts.TimeLayout)
		}

		if opts.IncludeDetails {
			t.Rows = append(t.Rows, []any{image, sku, name, category, description, rec.Quantity, status, updated})
		} else {
			t.Rows = append(t.Rows, []any{sku, name, category, rec.Quantity, status, updated})
		}
	}
	return t
}
