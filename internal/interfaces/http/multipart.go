package http

import (
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
)

// isMultipart indica si la petición trae un formulario multipart.
func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

// openArchivos abre los ficheros del formulario. El cierre devuelto debe llamarse
// cuando el caso de uso termina de leerlos.
func openArchivos(headers []*multipart.FileHeader) ([]dto.Archivo, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	out := make([]dto.Archivo, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, f)
		out = append(out, dto.Archivo{Nombre: fh.Filename, Size: fh.Size, Reader: f})
	}
	return out, closeAll, nil
}

func formValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}

// formBool acepta true/false y 1/0; vacío es false.
func formBool(form *multipart.Form, key string) bool {
	b, _ := strconv.ParseBool(formValue(form, key))
	return b
}

func formInt64(form *multipart.Form, key string) (int64, bool) {
	n, err := strconv.ParseInt(formValue(form, key), 10, 64)
	return n, err == nil && n > 0
}

// queryUserID filtro opcional ?userId= de los listados.
func queryUserID(c *fiber.Ctx) (*int64, bool) {
	raw := c.Query("userId")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, false
	}
	return &id, true
}
