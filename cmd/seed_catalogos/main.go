// seed_catalogos genera el script SQL que da de alta clientes y obras a partir de un CSV
// exportado de la hoja de control (columnas: tipo,nombre; tipo = cliente | obra).
//
// Uso: go run ./cmd/seed_catalogos [ruta/catalogos.csv]
// Por defecto busca catalogos.csv en el directorio actual. Acepta UTF-8 y Windows-1252.
// Escribe: internal/infrastructure/postgres/migrations/002_seed_catalogos.sql
package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func main() {
	csvPath := "catalogos.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	raw, err := os.ReadFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}

	clientes, obras, err := parseCatalogos(decodeText(raw))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "002_seed_catalogos.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, clientes, obras); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d clientes, %d obras\n", outPath, len(clientes), len(obras))
}

// decodeText devuelve el contenido como UTF-8. Lo que no es UTF-8 válido se asume Windows-1252.
func decodeText(raw []byte) io.Reader {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return bytes.NewReader(raw)
	}
	return transform.NewReader(bytes.NewReader(raw), charmap.Windows1252.NewDecoder())
}

// parseCatalogos nombres únicos sin distinguir mayúsculas, ordenados. La cabecera es opcional.
func parseCatalogos(r io.Reader) (clientes, obras []string, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	seen := map[string]map[string]string{"cliente": {}, "obra": {}}
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if len(rec) < 2 {
			continue
		}
		tipo := strings.ToLower(strings.TrimSpace(rec[0]))
		nombre := strings.TrimSpace(rec[1])
		if line == 1 && tipo == "tipo" {
			continue
		}
		bucket, ok := seen[tipo]
		if !ok {
			return nil, nil, fmt.Errorf("línea %d: tipo %q desconocido", line, rec[0])
		}
		if nombre == "" {
			continue
		}
		key := strings.ToLower(nombre)
		if _, dup := bucket[key]; !dup {
			bucket[key] = nombre
		}
	}
	return sortedValues(seen["cliente"]), sortedValues(seen["obra"]), nil
}

func writeSQL(w io.Writer, clientes, obras []string) error {
	var b strings.Builder
	b.WriteString("-- Catálogo inicial de clientes y obras\n")
	b.WriteString("-- Generado con cmd/seed_catalogos\n\n")
	writeInsert(&b, "clientes", clientes)
	writeInsert(&b, "obras", obras)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeInsert(b *strings.Builder, table string, nombres []string) {
	if len(nombres) == 0 {
		return
	}
	fmt.Fprintf(b, "INSERT INTO %s (nombre) VALUES\n", table)
	for i, n := range nombres {
		sep := ","
		if i == len(nombres)-1 {
			sep = ""
		}
		fmt.Fprintf(b, "  ('%s')%s\n", escapeSQL(n), sep)
	}
	b.WriteString("ON CONFLICT (lower(nombre)) DO NOTHING;\n\n")
}

func sortedValues(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
