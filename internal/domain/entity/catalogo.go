package entity

import "time"

// Cliente para el que se ejecutan obras.
type Cliente struct {
	ID        int64
	Nombre    string
	CreatedAt time.Time
}

// Obra lugar de trabajo contra el que se registran pedidos.
type Obra struct {
	ID        int64
	Nombre    string
	CreatedAt time.Time
}
