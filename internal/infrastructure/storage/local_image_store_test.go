package storage

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pedidos-api/internal/domain"
)

func newStore(t *testing.T) *LocalImageStore {
	t.Helper()
	s, err := NewLocalImageStore(Options{Dir: t.TempDir(), MaxBytes: 1 << 20})
	require.NoError(t, err)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	s.suffix = func() string { return "a1b2c3d4" }
	return s
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.NRGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcess_RedimensionaLadoMayor(t *testing.T) {
	s := newStore(t)
	raw := pngBytes(t, 2400, 600)

	out, err := s.Process(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 1200, cfg.Width)
	assert.Equal(t, 300, cfg.Height)
}

func TestProcess_PequenaNoSeAgranda(t *testing.T) {
	s := newStore(t)
	raw := pngBytes(t, 40, 30)
	out, err := s.Process(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width)
	assert.Equal(t, 30, cfg.Height)
}

func TestProcess_Limites(t *testing.T) {
	s := newStore(t)
	_, err := s.Process(bytes.NewReader(nil), 2<<20)
	assert.ErrorIs(t, err, domain.ErrImagenMuyGrande, "se rechaza por tamaño declarado")

	big := bytes.Repeat([]byte{0}, (1<<20)+10)
	_, err = s.Process(bytes.NewReader(big), 0)
	assert.ErrorIs(t, err, domain.ErrImagenMuyGrande, "y por tamaño leído")

	_, err = s.Process(strings.NewReader("no soy una imagen"), 17)
	assert.ErrorIs(t, err, domain.ErrImagenInvalida)
}

// pngCabecera PNG mínimo que declara w×h en su IHDR sin datos de píxeles.
func pngCabecera(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	chunk := func(tipo string, data []byte) {
		_ = binary.Write(&buf, binary.BigEndian, uint32(len(data)))
		buf.WriteString(tipo)
		buf.Write(data)
		crc := crc32.NewIEEE()
		crc.Write([]byte(tipo))
		crc.Write(data)
		_ = binary.Write(&buf, binary.BigEndian, crc.Sum32())
	}
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bits por canal
	ihdr[9] = 6 // RGBA
	chunk("IHDR", ihdr)
	chunk("IEND", nil)
	return buf.Bytes()
}

func TestProcess_DimensionesDeclaradasExcesivas(t *testing.T) {
	s := newStore(t)
	raw := pngCabecera(12000, 12000)
	require.Less(t, len(raw), 100, "la cabecera ocupa pocos bytes")

	_, err := s.Process(bytes.NewReader(raw), int64(len(raw)))
	assert.ErrorIs(t, err, domain.ErrImagenMuyGrande)
}

func TestProcess_MaxPixelsConfigurable(t *testing.T) {
	s, err := NewLocalImageStore(Options{Dir: t.TempDir(), MaxPixels: 1000})
	require.NoError(t, err)

	raw := pngBytes(t, 40, 30)
	_, err = s.Process(bytes.NewReader(raw), int64(len(raw)))
	assert.ErrorIs(t, err, domain.ErrImagenMuyGrande, "1200 px superan el techo de 1000")

	raw = pngBytes(t, 30, 30)
	_, err = s.Process(bytes.NewReader(raw), int64(len(raw)))
	assert.NoError(t, err)
}

func TestSaveCompraTicket_ReemplazoEnElMismoMilisegundo(t *testing.T) {
	s, err := NewLocalImageStore(Options{Dir: t.TempDir()})
	require.NoError(t, err)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	ctx := context.Background()

	a, err := s.SaveCompraTicket(ctx, 3, []byte("uno"))
	require.NoError(t, err)
	b, err := s.SaveCompraTicket(ctx, 3, []byte("dos"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	require.NoError(t, s.RemoveFile(ctx, b))
	full, err := s.resolve(a)
	require.NoError(t, err)
	got, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, "uno", string(got))
}

func TestSavePedidoImages_RutasYBorrado(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	paths, err := s.SavePedidoImages(ctx, 7, 3, [][]byte{[]byte("a"), []byte("b")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/uploads/pedidos/7/imagen-3-1700000000000.jpg",
		"/uploads/pedidos/7/imagen-4-1700000000000.jpg",
	}, paths)

	b, err := os.ReadFile(filepath.Join(s.Root(), "pedidos", "7", "imagen-4-1700000000000.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "b", string(b))

	require.NoError(t, s.RemovePedidoDir(ctx, 7))
	_, err = os.Stat(filepath.Join(s.Root(), "pedidos", "7"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.RemovePedidoDir(ctx, 7), "directorio ausente no es error")
}

func TestRemoveFile_FueraDeUploads(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	web, err := s.SaveCompraTicket(ctx, 2, []byte("t"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/compras/2/ticket-1700000000000-a1b2c3d4.jpg", web)

	require.NoError(t, s.RemoveFile(ctx, web))
	assert.NoError(t, s.RemoveFile(ctx, web), "ya borrado no es error")
	assert.ErrorIs(t, s.RemoveFile(ctx, "/uploads/../../etc/passwd"), domain.ErrInvalidInput)
}
