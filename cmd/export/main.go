// Command export exporta el inventario de la bodega de la sesión persistida sin levantar la API.
//
//	go run ./cmd/export -format csv -search tornillo -sort quantity -direction desc -out inventario.csv
//
// Sin -out el archivo se entrega al destino configurado (EXPORT_SINK).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/inventario-sync/internal/application/view"
	"github.com/jhoicas/inventario-sync/internal/bootstrap"
	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/pkg/config"
	"github.com/jhoicas/inventario-sync/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}

	format := flag.String("format", cfg.Export.Format, "formato: xlsx, csv o pdf")
	search := flag.String("search", "", "filtro por nombre o SKU")
	category := flag.Int64("category", 0, "filtro por categoría (0 = todas)")
	sortKey := flag.String("sort", "", "orden: name o quantity")
	direction := flag.String("direction", "asc", "asc o desc")
	out := flag.String("out", "", "ruta de salida; vacío = destino configurado")
	flag.Parse()

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name, Output: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *format, *out, *search, *category, *sortKey, *direction); err != nil {
		log.Error().Err(err).Msg("exportación fallida")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, format, out, search string, category int64, sortKey, direction string) error {
	key, err := view.ParseSortKey(sortKey)
	if err != nil {
		return err
	}
	dir, err := view.ParseDirection(direction)
	if err != nil {
		return err
	}

	comps, err := bootstrap.Build(ctx, cfg, log.Zerolog())
	if err != nil {
		return err
	}
	defer comps.Close()

	sess := comps.Session.Restore(ctx)
	if !sess.Authenticated() {
		return fmt.Errorf("no hay sesión guardada: inicie sesión desde la API")
	}
	if !sess.HasWarehouse() {
		return fmt.Errorf("la sesión no tiene bodega activa")
	}
	if err := comps.Inventory.Refresh(ctx); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			comps.Session.Invalidate(ctx)
		}
		return fmt.Errorf("cargar inventario: %w", err)
	}

	records := view.Project(comps.Inventory.Snapshot(), view.Query{
		Search:     search,
		CategoryID: category,
		SortKey:    key,
		Direction:  dir,
	})
	art, err := comps.Export.Render(records, sess.WarehouseID, format)
	if err != nil {
		return err
	}

	location := out
	if out != "" {
		if err := os.WriteFile(out, art.Data, 0o644); err != nil {
			return fmt.Errorf("escribir %s: %w", out, err)
		}
	} else if location, err = comps.Export.Save(ctx, art); err != nil {
		return err
	}
	exportLog := log.Component("export")
	exportLog.Info().
		Str("file", art.Name).
		Str("location", location).
		Int("records", len(records)).
		Int64("warehouse_id", sess.WarehouseID).
		Msg("exportación lista")
	return nil
}
