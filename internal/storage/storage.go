// Package storage provides the key-value persistence port the booking core
// writes through, with file, sqlite, redis and in-memory backends.
//
// The contract mirrors browser local storage: string keys, string values,
// synchronous writes that are durable before the call returns.
package storage

// Port is the persistence interface injected into the stores. Get reports
// ok=false when the key is absent; Remove on an absent key is a no-op.
type Port interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}
