// Package modelfactory builds provider adapters from configuration.
//
// New maps one config.ProviderConfig to the matching adapter. Manager
// caches one adapter per tag on top of a config.Manager and drops them
// whenever the configuration changes, so the next request picks up a new
// API key, URL or quality tier.
package modelfactory
