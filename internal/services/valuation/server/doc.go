// Package server hosts the valuation gRPC service.
package server
