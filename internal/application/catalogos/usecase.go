// Package catalogos clientes y obras contra los que se registran pedidos.
package catalogos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/access"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

// UseCase lectura para cualquier autenticado, alta solo admin.
type UseCase struct {
	repo repository.CatalogoRepository
	now  func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.CatalogoRepository) *UseCase {
	return &UseCase{repo: repo, now: time.Now}
}

func (uc *UseCase) CreateCliente(ctx context.Context, actor access.Actor, in dto.CatalogoRequest) (*dto.CatalogoResponse, error) {
	nombre, err := uc.check(actor, in)
	if err != nil {
		return nil, err
	}
	c := &entity.Cliente{Nombre: nombre, CreatedAt: uc.now()}
	if err := uc.repo.CreateCliente(ctx, c); err != nil {
		return nil, err
	}
	return &dto.CatalogoResponse{ID: c.ID, Nombre: c.Nombre, CreatedAt: c.CreatedAt}, nil
}

func (uc *UseCase) ListClientes(ctx context.Context) ([]dto.CatalogoResponse, error) {
	cs, err := uc.repo.ListClientes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CatalogoResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, dto.CatalogoResponse{ID: c.ID, Nombre: c.Nombre, CreatedAt: c.CreatedAt})
	}
	return out, nil
}

func (uc *UseCase) CreateObra(ctx context.Context, actor access.Actor, in dto.CatalogoRequest) (*dto.CatalogoResponse, error) {
	nombre, err := uc.check(actor, in)
	if err != nil {
		return nil, err
	}
	o := &entity.Obra{Nombre: nombre, CreatedAt: uc.now()}
	if err := uc.repo.CreateObra(ctx, o); err != nil {
		return nil, err
	}
	return &dto.CatalogoResponse{ID: o.ID, Nombre: o.Nombre, CreatedAt: o.CreatedAt}, nil
}

func (uc *UseCase) ListObras(ctx context.Context) ([]dto.CatalogoResponse, error) {
	obras, err := uc.repo.ListObras(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CatalogoResponse, 0, len(obras))
	for _, o := range obras {
		out = append(out, dto.CatalogoResponse{ID: o.ID, Nombre: o.Nombre, CreatedAt: o.CreatedAt})
	}
	return out, nil
}

func (uc *UseCase) check(actor access.Actor, in dto.CatalogoRequest) (string, error) {
	if !actor.Can(access.CatalogoGestionar) {
		return "", domain.ErrForbidden
	}
	nombre := strings.TrimSpace(in.Nombre)
	if nombre == "" {
		return "", fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
	}
	return nombre, nil
}
