package api

import (
	"github.com/JaimeStill/clientes/internal/clientes"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Clientes clientes.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	repo := clientes.WithCache(
		clientes.NewRepository(runtime.Database.Connection()),
		runtime.Cache,
		runtime.Logger,
	)

	return &Domain{
		Clientes: clientes.New(
			repo,
			clientes.NewBlobStore(runtime.Storage, runtime.Metrics),
			runtime.Logger,
		),
	}
}
