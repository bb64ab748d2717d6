package ports

import (
	"context"
	"time"
)

// Cache almacenamiento JSON clave/valor con TTL.
type Cache interface {
	// Get devuelve false si la clave no existe.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Locker exclusión mutua con nombre para tareas que no deben solaparse.
type Locker interface {
	// TryLock devuelve ok=false sin error si otro proceso tiene el lock.
	TryLock(ctx context.Context, name string, ttl time.Duration) (unlock func(), ok bool, err error)
}
