// Package bootstrap arma los componentes a partir de la configuración. Lo comparten cmd/api y cmd/export.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	appcatalog "github.com/jhoicas/inventario-sync/internal/application/catalog"
	"github.com/jhoicas/inventario-sync/internal/application/export"
	"github.com/jhoicas/inventario-sync/internal/application/inventory"
	"github.com/jhoicas/inventario-sync/internal/application/session"
	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/internal/domain/repository"
	"github.com/jhoicas/inventario-sync/internal/infrastructure/catalog"
	"github.com/jhoicas/inventario-sync/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-sync/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-sync/internal/infrastructure/postgres"
	inredis "github.com/jhoicas/inventario-sync/internal/infrastructure/redis"
	"github.com/jhoicas/inventario-sync/internal/infrastructure/sink"
	"github.com/jhoicas/inventario-sync/internal/infrastructure/sqlite"
	"github.com/jhoicas/inventario-sync/internal/infrastructure/tabular"
	"github.com/jhoicas/inventario-sync/pkg/config"
)

// Components grafo de dependencias ya conectado.
type Components struct {
	Registry  *prometheus.Registry
	Metrics   *metrics.Collector
	Storage   repository.SessionStorage
	Gateway   *catalog.HTTPGateway
	Session   *session.Store
	Inventory *inventory.Repository
	Composite *inventory.CompositeCreateUseCase
	Catalog   *appcatalog.UseCase
	Export    *export.Pipeline
}

// Close libera el almacenamiento de la sesión.
func (c *Components) Close() error {
	if c.Storage == nil {
		return nil
	}
	return c.Storage.Close()
}

// Build conecta todo. No toca la red del catálogo: Restore es local.
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Components, error) {
	c := &Components{Registry: prometheus.NewRegistry()}
	c.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.Metrics = metrics.NewCollector(c.Registry)

	storage, err := OpenSessionStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.Storage = storage

	// el gateway lee el token del Store, que a su vez usa el gateway para autenticar
	var store *session.Store
	tokens := repository.TokenFunc(func() string { return store.Token() })
	c.Gateway = catalog.NewHTTPGateway(catalog.Config{
		BaseURL:    cfg.Catalog.BaseURL,
		Timeout:    cfg.Catalog.Timeout,
		AuthScheme: cfg.Catalog.AuthScheme,
		RevokePath: cfg.Catalog.RevokePath,
	}, tokens, c.Metrics, log)
	store = session.NewStore(c.Gateway, storage, log, session.WithRevoke(cfg.Catalog.RevokeOnLogout))
	c.Session = store

	c.Inventory = inventory.NewRepository(c.Gateway, store, log, inventory.WithCacheObserver(c.Metrics))
	c.Composite = inventory.NewCompositeCreateUseCase(c.Gateway, c.Inventory, log)
	c.Catalog = appcatalog.NewUseCase(c.Inventory, c.Gateway, store, log)

	out, err := OpenSink(ctx, cfg)
	if err != nil {
		_ = storage.Close()
		return nil, err
	}
	opts := export.DefaultOptions()
	opts.TimeLayout = cfg.Export.TimeLayout
	opts.Location = cfg.Export.Location()
	opts.IncludeDetails = cfg.Export.IncludeDetails
	c.Export = export.NewPipeline(opts, out, log,
		tabular.XLSX{},
		tabular.CSV{},
		tabular.PDF{Author: cfg.App.Name},
	)
	return c, nil
}

// Resume restaura la sesión persistida y, si tiene bodega, carga su inventario.
// Un Unauthorized invalida la sesión restaurada; otros fallos solo se registran.
func (c *Components) Resume(ctx context.Context, log zerolog.Logger) {
	sess := c.Session.Restore(ctx)
	if !sess.Authenticated() || !sess.HasWarehouse() {
		return
	}
	if err := c.Inventory.Refresh(ctx); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			c.Session.Invalidate(ctx)
			c.Inventory.Reset()
		}
		log.Warn().Err(err).Int64("warehouse_id", sess.WarehouseID).Msg("no se pudo cargar el inventario al restaurar la sesión")
		return
	}
	log.Info().Int64("warehouse_id", sess.WarehouseID).Int("records", len(c.Inventory.Snapshot())).Msg("sesión restaurada")
}

// OpenSessionStorage abre el almacenamiento según STORAGE_DRIVER.
func OpenSessionStorage(ctx context.Context, cfg *config.Config) (repository.SessionStorage, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return memory.NewSessionStorage(), nil
	case "sqlite":
		s, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		s, err := postgres.NewSessionStorage(ctx, pool, cfg.Storage.KeyPrefix)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return s, nil
	case "redis":
		client, err := inredis.Connect(ctx, cfg.Storage.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("conexión a Redis: %w", err)
		}
		return inredis.NewSessionStorage(client, cfg.Storage.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("driver de sesión %q no soportado", cfg.Storage.Driver)
	}
}

// OpenSink destino de "guardar exportación"; nil con EXPORT_SINK=none (solo descarga).
func OpenSink(ctx context.Context, cfg *config.Config) (export.Sink, error) {
	switch cfg.Export.Sink {
	case "dir":
		d, err := sink.NewDir(cfg.Export.Dir)
		if err != nil {
			return nil, err
		}
		return d, nil
	case "s3":
		s, err := sink.NewS3(ctx, sink.S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
			Prefix:    cfg.S3.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, nil
	}
}
