package export

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
)

// Encoder serializa una tabla en un formato de archivo.
type Encoder interface {
	Format() string // "xlsx", "csv", "pdf"
	ContentType() string
	Encode(t Table) ([]byte, error)
}

// Sink guarda el artefacto y devuelve dónde quedó (ruta, URI s3://...).
type Sink interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// Artifact archivo listo para descargar o guardar.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// FileName nombre del archivo exportado: inventory_warehouse_<id>.<ext>.
func FileName(warehouseID int64, ext string) string {
	return fmt.Sprintf("inventory_warehouse_%d.%s", warehouseID, ext)
}

// Pipeline une Snapshot, el codificador elegido y el destino.
type Pipeline struct {
	encoders map[string]Encoder
	sink     Sink
	opts     Options
	log      zerolog.Logger
}

// NewPipeline sink puede ser nil (solo descarga).
func NewPipeline(opts Options, sink Sink, log zerolog.Logger, encoders ...Encoder) *Pipeline {
	p := &Pipeline{
		encoders: make(map[string]Encoder, len(encoders)),
		sink:     sink,
		opts:     opts,
		log:      log.With().Str("component", "export").Logger(),
	}
	for _, e := range encoders {
		p.encoders[strings.ToLower(e.Format())] = e
	}
	return p
}

// Formats formatos registrados, ordenados.
func (p *Pipeline) Formats() []string {
	out := make([]string, 0, len(p.encoders))
	for f := range p.encoders {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Render codifica la vista para la bodega dada.
func (p *Pipeline) Render(records []entity.InventoryRecord, warehouseID int64, format string) (*Artifact, error) {
	enc, ok := p.encoders[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, domain.Invalid("format", fmt.Sprintf("formato %q no soportado (%s)", format, strings.Join(p.Formats(), ", ")))
	}
	table := Snapshot(records, p.opts)
	table.Title = fmt.Sprintf("%s - warehouse %d", SheetName, warehouseID)
	data, err := enc.Encode(table)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", enc.Format(), err)
	}
	return &Artifact{
		Name:        FileName(warehouseID, enc.Format()),
		ContentType: enc.ContentType(),
		Data:        data,
	}, nil
}

// Save entrega el artefacto al destino configurado.
func (p *Pipeline) Save(ctx context.Context, a *Artifact) (string, error) {
	if p.sink == nil {
		return "", domain.Invalid("sink", "no hay destino de exportación configurado")
	}
	location, err := p.sink.Save(ctx, a.Name, a.ContentType, a.Data)
	if err != nil {
		return "", fmt.Errorf("export: guardar %s: %w", a.Name, err)
	}
	p.log.Info().Str("file", a.Name).Int("bytes", len(a.Data)).Str("location", location).Msg("exportación guardada")
	return location, nil
}
