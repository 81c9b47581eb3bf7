package sink_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-sync/internal/infrastructure/sink"
)

func TestDir_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	d, err := sink.NewDir(dir)
	require.NoError(t, err)

	loc, err := d.Save(context.Background(), "inventory_warehouse_7.csv", "text/csv", []byte("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "inventory_warehouse_7.csv"), loc)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no quedan temporales")
}

func TestDir_NoEscapaDelDirectorio(t *testing.T) {
	dir := t.TempDir()
	d, err := sink.NewDir(dir)
	require.NoError(t, err)

	loc, err := d.Save(context.Background(), "../../x.csv", "", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "x.csv"), loc)
}

// fakeS3 transporte en memoria: guarda cada PUT por ruta.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.Method != http.MethodPut {
		return &http.Response{StatusCode: http.StatusMethodNotAllowed, Body: io.NopCloser(strings.NewReader("")), Header: http.Header{}}, nil
	}
	body, _ := io.ReadAll(req.Body)
	f.objects[req.URL.Path] = body
	f.types[req.URL.Path] = req.Header.Get("Content-Type")
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader(nil)),
		Header:     http.Header{"Etag": {`"etag123"`}},
	}, nil
}

func TestS3_Save(t *testing.T) {
	rt := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	s, err := sink.NewS3(context.Background(), sink.S3Config{
		Bucket:          "reportes",
		Endpoint:        "https://mock.s3.local",
		PathStyle:       true,
		Prefix:          "exports",
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		HTTPClient:      &http.Client{Transport: rt},
	})
	require.NoError(t, err)

	loc, err := s.Save(context.Background(), "inventory_warehouse_7.xlsx", "application/vnd.ms-excel", []byte("xlsx-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "s3://reportes/exports/inventory_warehouse_7.xlsx", loc)

	key := "/reportes/exports/inventory_warehouse_7.xlsx"
	require.Contains(t, rt.objects, key)
	assert.Equal(t, []byte("xlsx-bytes"), rt.objects[key])
	assert.Equal(t, "application/vnd.ms-excel", rt.types[key])
}

func TestS3_SinBucket(t *testing.T) {
	_, err := sink.NewS3(context.Background(), sink.S3Config{})
	assert.Error(t, err)
}
