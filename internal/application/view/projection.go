// Package view deriva la vista filtrada y ordenada del inventario. Funciones puras.
package view

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
)

// SortKey criterio de orden. Vacío conserva el orden de entrada.
type SortKey string

const (
	SortNone     SortKey = ""
	SortName     SortKey = "name"
	SortQuantity SortKey = "quantity"
)

// Direction sentido del orden.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Query parámetros de la proyección. CategoryID == 0 no filtra.
type Query struct {
	Search     string
	CategoryID int64
	SortKey    SortKey
	Direction  Direction
}

// ParseSortKey acepta "", "name" o "quantity".
func ParseSortKey(raw string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(raw))); k {
	case SortNone, SortName, SortQuantity:
		return k, nil
	}
	return SortNone, domain.Invalid("sort", "debe ser name o quantity")
}

// ParseDirection acepta asc/ascending y desc/descending; vacío es ascendente.
func ParseDirection(raw string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return Ascending, domain.Invalid("direction", "debe ser asc o desc")
}

// Project filtra por búsqueda y categoría y ordena de forma estable.
// No modifica records; devuelve un slice nuevo.
func Project(records []entity.InventoryRecord, q Query) []entity.InventoryRecord {
	fold := cases.Fold()
	term := fold.String(strings.TrimSpace(q.Search))

	out := make([]entity.InventoryRecord, 0, len(records))
	for _, rec := range records {
		if !matchesSearch(fold, rec, term) || !matchesCategory(rec, q.CategoryID) {
			continue
		}
		out = append(out, rec)
	}

	var compare func(a, b entity.InventoryRecord) int
	switch q.SortKey {
	case SortName:
		compare = func(a, b entity.InventoryRecord) int {
			return strings.Compare(fold.String(productName(a)), fold.String(productName(b)))
		}
	case SortQuantity:
		compare = func(a, b entity.InventoryRecord) int { return cmp.Compare(a.Quantity, b.Quantity) }
	default:
		return out
	}
	if q.Direction == Descending {
		asc := compare
		compare = func(a, b entity.InventoryRecord) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, compare)
	return out
}

// Registros sin detalle de producto solo coinciden con una búsqueda vacía.
func matchesSearch(fold cases.Caser, rec entity.InventoryRecord, term string) bool {
	if term == "" {
		return true
	}
	p := rec.ProductDetails
	if p == nil {
		return false
	}
	return strings.Contains(fold.String(p.Name), term) || strings.Contains(fold.String(p.SKU), term)
}

func matchesCategory(rec entity.InventoryRecord, categoryID int64) bool {
	if categoryID == 0 {
		return true
	}
	return rec.ProductDetails != nil && rec.ProductDetails.CategoryID == categoryID
}

func productName(rec entity.InventoryRecord) string {
	if rec.ProductDetails == nil {
		return ""
	}
	return rec.ProductDetails.Name
}

// Summary totales de una vista.
type Summary struct {
	Records       int `json:"records"`
	TotalQuantity int `json:"total_quantity"`
	LowStock      int `json:"low_stock"`
}

// Summarize cuenta registros, unidades y registros con stock bajo.
func Summarize(records []entity.InventoryRecord) Summary {
	s := Summary{Records: len(records)}
	for _, rec := range records {
		s.TotalQuantity += rec.Quantity
		if rec.LowStock() {
			s.LowStock++
		}
	}
	return s
}
