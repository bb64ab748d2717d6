// Package memory implementa los puertos de persistencia en memoria.
// Un único mutex serializa a los escritores; Run mantiene el lock durante toda la transacción
// y restaura una copia del estado si fn falla.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/pedidos-api/internal/application/ports"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

var _ ports.TxRunner = (*Store)(nil)

// Store almacén compartido por todos los repositorios en memoria.
type Store struct {
	mu sync.Mutex
	d  *data
}

type data struct {
	usuarios    map[int64]entity.Usuario
	pedidos     map[int64]*entity.Pedido
	comentarios map[int64][]entity.Comentario
	compras     map[int64]*entity.Compra
	notifs      map[int64]entity.Notificacion
	clientes    map[int64]entity.Cliente
	obras       map[int64]entity.Obra
	seq         map[string]int64
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{d: &data{
		usuarios:    make(map[int64]entity.Usuario),
		pedidos:     make(map[int64]*entity.Pedido),
		comentarios: make(map[int64][]entity.Comentario),
		compras:     make(map[int64]*entity.Compra),
		notifs:      make(map[int64]entity.Notificacion),
		clientes:    make(map[int64]entity.Cliente),
		obras:       make(map[int64]entity.Obra),
		seq:         make(map[string]int64),
	}}
}

// Run ejecuta fn con repositorios que comparten el lock del almacén.
func (s *Store) Run(ctx context.Context, fn func(r ports.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	tx := conn{s: s, inTx: true}
	if err := fn(tx.repos()); err != nil {
		s.d = snapshot
		return err
	}
	return nil
}

// Usuarios repositorio fuera de transacción.
func (s *Store) Usuarios() *UsuarioRepo { return &UsuarioRepo{c: conn{s: s}} }

// Pedidos repositorio fuera de transacción.
func (s *Store) Pedidos() *PedidoRepo { return &PedidoRepo{c: conn{s: s}} }

// Compras repositorio fuera de transacción.
func (s *Store) Compras() *CompraRepo { return &CompraRepo{c: conn{s: s}} }

// Notificaciones repositorio fuera de transacción.
func (s *Store) Notificaciones() *NotificacionRepo { return &NotificacionRepo{c: conn{s: s}} }

// Catalogo repositorio fuera de transacción.
func (s *Store) Catalogo() *CatalogoRepo { return &CatalogoRepo{c: conn{s: s}} }

// conn acceso al estado: toma el lock salvo que ya lo tenga la transacción en curso.
type conn struct {
	s    *Store
	inTx bool
}

func (c conn) do(fn func(d *data) error) error {
	if !c.inTx {
		c.s.mu.Lock()
		defer c.s.mu.Unlock()
	}
	return fn(c.s.d)
}

func (c conn) repos() ports.Repos {
	return ports.Repos{
		Usuarios:       &UsuarioRepo{c: c},
		Pedidos:        &PedidoRepo{c: c},
		Compras:        &CompraRepo{c: c},
		Notificaciones: &NotificacionRepo{c: c},
	}
}

func (d *data) next(name string) int64 {
	d.seq[name]++
	return d.seq[name]
}

func (d *data) clone() *data {
	c := &data{
		usuarios:    make(map[int64]entity.Usuario, len(d.usuarios)),
		pedidos:     make(map[int64]*entity.Pedido, len(d.pedidos)),
		comentarios: make(map[int64][]entity.Comentario, len(d.comentarios)),
		compras:     make(map[int64]*entity.Compra, len(d.compras)),
		notifs:      make(map[int64]entity.Notificacion, len(d.notifs)),
		clientes:    make(map[int64]entity.Cliente, len(d.clientes)),
		obras:       make(map[int64]entity.Obra, len(d.obras)),
		seq:         make(map[string]int64, len(d.seq)),
	}
	for k, v := range d.usuarios {
		c.usuarios[k] = v
	}
	for k, v := range d.pedidos {
		c.pedidos[k] = v.Clone()
	}
	for k, v := range d.comentarios {
		c.comentarios[k] = append([]entity.Comentario(nil), v...)
	}
	for k, v := range d.compras {
		c.compras[k] = v.Clone()
	}
	for k, v := range d.notifs {
		c.notifs[k] = v
	}
	for k, v := range d.clientes {
		c.clientes[k] = v
	}
	for k, v := range d.obras {
		c.obras[k] = v
	}
	for k, v := range d.seq {
		c.seq[k] = v
	}
	return c
}
