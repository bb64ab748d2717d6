package ports

import (
	"context"
	"io"
)

// ImageStore pipeline de imágenes: compresión acotada y almacenamiento en disco.
type ImageStore interface {
	// Process valida tamaño, decodifica, redimensiona y codifica a JPEG. No escribe en disco.
	Process(r io.Reader, size int64) ([]byte, error)
	// SavePedidoImages escribe las imágenes del pedido a partir del índice first (1-based)
	// y devuelve sus rutas web en el mismo orden.
	SavePedidoImages(ctx context.Context, pedidoID int64, first int, images [][]byte) ([]string, error)
	// RemovePedidoDir borra el directorio del pedido; un directorio ausente no es error.
	RemovePedidoDir(ctx context.Context, pedidoID int64) error
	SaveCompraTicket(ctx context.Context, compraID int64, image []byte) (string, error)
	RemoveFile(ctx context.Context, webPath string) error
	RemoveCompraDir(ctx context.Context, compraID int64) error
}
