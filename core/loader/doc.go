// Package loader provides the feature loading system.
//
// Each feature implements the Feature interface, which exposes its name,
// whether it is enabled, and a Load hook registering its routes.
//
// # Manager
//
// The Manager holds the registered features. Register adds a feature and
// LoadAll loads the enabled ones in registration order.
package loader
