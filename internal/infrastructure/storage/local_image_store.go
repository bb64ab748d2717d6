// Package storage pipeline de imágenes: valida, redimensiona a JPEG y guarda bajo el
// directorio de subidas que el servidor publica como /uploads.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // decoder
	"image/jpeg"
	_ "image/png" // decoder
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // decoder

	"github.com/jhoicas/pedidos-api/internal/application/ports"
	"github.com/jhoicas/pedidos-api/internal/domain"
)

var _ ports.ImageStore = (*LocalImageStore)(nil)

// WebPrefix prefijo de las rutas web guardadas en los registros.
const WebPrefix = "/uploads"

// Options límites del pipeline; los valores cero toman los de por defecto.
type Options struct {
	Dir         string
	MaxBytes    int64
	MaxPixels   int64
	MaxSide     int
	JPEGQuality int
}

// LocalImageStore imágenes en el sistema de archivos local.
type LocalImageStore struct {
	root    string
	max     int64
	pixels  int64
	side    int
	quality int
	now     func() time.Time
	suffix  func() string
}

// NewLocalImageStore crea el directorio raíz si no existe.
func NewLocalImageStore(o Options) (*LocalImageStore, error) {
	if o.Dir == "" {
		o.Dir = "uploads"
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = 10 << 20
	}
	if o.MaxPixels <= 0 {
		o.MaxPixels = 40_000_000
	}
	if o.MaxSide <= 0 {
		o.MaxSide = 1200
	}
	if o.JPEGQuality <= 0 || o.JPEGQuality > 100 {
		o.JPEGQuality = 80
	}
	root, err := filepath.Abs(o.Dir)
	if err != nil {
		return nil, fmt.Errorf("storage dir: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalImageStore{
		root:    root,
		max:     o.MaxBytes,
		pixels:  o.MaxPixels,
		side:    o.MaxSide,
		quality: o.JPEGQuality,
		now:     time.Now,
		suffix:  func() string { return uuid.NewString()[:8] },
	}, nil
}

// Root directorio absoluto publicado como /uploads.
func (s *LocalImageStore) Root() string { return s.root }

// Process rechaza entradas mayores al límite antes de decodificar. Las dimensiones
// declaradas en la cabecera se validan contra MaxPixels antes de reservar el bitmap.
func (s *LocalImageStore) Process(r io.Reader, size int64) ([]byte, error) {
	if size > s.max {
		return nil, domain.ErrImagenMuyGrande
	}
	raw, err := io.ReadAll(io.LimitReader(r, s.max+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(raw)) > s.max {
		return nil, domain.ErrImagenMuyGrande
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, domain.ErrImagenInvalida
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, domain.ErrImagenInvalida
	}
	if int64(cfg.Width)*int64(cfg.Height) > s.pixels {
		return nil, domain.ErrImagenMuyGrande
	}
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, domain.ErrImagenInvalida
	}
	dst := s.resize(src)
	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return out.Bytes(), nil
}

// resize lado mayor a s.side como máximo, sobre fondo blanco para imágenes con alfa.
func (s *LocalImageStore) resize(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > s.side || h > s.side {
		if w >= h {
			h = max(1, h*s.side/w)
			w = s.side
		} else {
			w = max(1, w*s.side/h)
			h = s.side
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// SavePedidoImages uploads/pedidos/{id}/imagen-{n}-{unixMillis}.jpg
func (s *LocalImageStore) SavePedidoImages(ctx context.Context, pedidoID int64, first int, images [][]byte) ([]string, error) {
	rel := path.Join("pedidos", strconv.FormatInt(pedidoID, 10))
	ms := s.now().UnixMilli()
	out := make([]string, 0, len(images))
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		name := fmt.Sprintf("imagen-%d-%d.jpg", first+i, ms)
		web, err := s.write(rel, name, img)
		if err != nil {
			return out, err
		}
		out = append(out, web)
	}
	return out, nil
}

// SaveCompraTicket uploads/compras/{id}/ticket-{unixMillis}-{sufijo}.jpg; el sufijo
// distingue reemplazos dentro del mismo milisegundo.
func (s *LocalImageStore) SaveCompraTicket(_ context.Context, compraID int64, img []byte) (string, error) {
	rel := path.Join("compras", strconv.FormatInt(compraID, 10))
	return s.write(rel, fmt.Sprintf("ticket-%d-%s.jpg", s.now().UnixMilli(), s.suffix()), img)
}

func (s *LocalImageStore) RemovePedidoDir(_ context.Context, pedidoID int64) error {
	return s.removeAll(filepath.Join(s.root, "pedidos", strconv.FormatInt(pedidoID, 10)))
}

func (s *LocalImageStore) RemoveCompraDir(_ context.Context, compraID int64) error {
	return s.removeAll(filepath.Join(s.root, "compras", strconv.FormatInt(compraID, 10)))
}

// RemoveFile borra una ruta web bajo /uploads. Rutas fuera del directorio se rechazan.
func (s *LocalImageStore) RemoveFile(_ context.Context, webPath string) error {
	full, err := s.resolve(webPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", webPath, err)
	}
	return nil
}

func (s *LocalImageStore) write(rel, name string, img []byte) (string, error) {
	dir := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", rel, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), img, 0o644); err != nil {
		return "", fmt.Errorf("write %s/%s: %w", rel, name, err)
	}
	return path.Join(WebPrefix, rel, name), nil
}

func (s *LocalImageStore) removeAll(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove %s: %w", dir, err)
	}
	return nil
}

func (s *LocalImageStore) resolve(webPath string) (string, error) {
	clean := path.Clean("/" + strings.TrimPrefix(webPath, "/"))
	if !strings.HasPrefix(clean, WebPrefix+"/") {
		return "", fmt.Errorf("%w: ruta fuera de %s", domain.ErrInvalidInput, WebPrefix)
	}
	rel := strings.TrimPrefix(clean, WebPrefix+"/")
	return filepath.Join(s.root, filepath.FromSlash(rel)), nil
}
