package dto

import "io"

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SuccessResponse confirmación simple.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// IDResponse confirmación con el id creado.
type IDResponse struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id"`
}

// ListResponse lista con total.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// NewList construye una ListResponse; nil se serializa como [].
func NewList[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Total: len(items)}
}

// Archivo subido por multipart, ya abierto por el handler.
type Archivo struct {
	Nombre string
	Size   int64
	Reader io.Reader
}
