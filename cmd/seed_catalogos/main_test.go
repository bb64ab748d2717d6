package main

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCatalogos_DeduplicaYOrdena(t *testing.T) {
	in := "tipo,nombre\ncliente,ACME\nobra,Torre Norte\ncliente,acme\ncliente,Beta\nobra, \n"
	clientes, obras, err := parseCatalogos(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"ACME", "Beta"}, clientes)
	assert.Equal(t, []string{"Torre Norte"}, obras)
}

func TestParseCatalogos_TipoDesconocido(t *testing.T) {
	_, _, err := parseCatalogos(strings.NewReader("proveedor,X\n"))
	assert.Error(t, err)
}

func TestDecodeText_Windows1252(t *testing.T) {
	// "Ñandú" en Windows-1252
	raw := []byte{'o', 'b', 'r', 'a', ',', 0xD1, 'a', 'n', 'd', 0xFA}
	b, err := io.ReadAll(decodeText(raw))
	require.NoError(t, err)
	assert.Equal(t, "obra,Ñandú", string(b))

	b, err = io.ReadAll(decodeText([]byte("\xef\xbb\xbfcliente,Peña")))
	require.NoError(t, err)
	assert.Equal(t, "cliente,Peña", string(b))
}

func TestWriteSQL_EscapaComillas(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, writeSQL(&sb, []string{"O'Brien"}, nil))
	assert.Contains(t, sb.String(), "INSERT INTO clientes (nombre) VALUES\n  ('O''Brien')\nON CONFLICT (lower(nombre)) DO NOTHING;")
	assert.NotContains(t, sb.String(), "INSERT INTO obras")
}
