// Package di provides dependency injection container
package di

import (
	"github.com/ssargent/m64kit/pkg/api" //nolint:depguard
	"github.com/ssargent/m64kit/pkg/catalog"
)

// CatalogOpener opens the movie catalog
type CatalogOpener func(opts catalog.Options) (*catalog.Catalog, error)

// Container holds all the dependencies for the application
type Container struct {
	serverFactory api.ServerFactory
	openCatalog   CatalogOpener
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		serverFactory: api.NewServerFactory(),
		openCatalog:   catalog.Open,
	}
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// OpenCatalog opens the catalog through the configured opener
func (c *Container) OpenCatalog(opts catalog.Options) (*catalog.Catalog, error) {
	return c.openCatalog(opts)
}

// SetCatalogOpener allows overriding how the catalog is opened (for testing)
func (c *Container) SetCatalogOpener(open CatalogOpener) {
	c.openCatalog = open
}
