// Package factory turns provider specs from the registry file into invokers. Each
// provider type registers a builder; the factory wraps every built invoker with the
// spec's client-side rate limit.
package factory
