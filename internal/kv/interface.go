package kv

// Store is the device-scoped durable key-value surface the offline
// engine persists through. Reads and writes are synchronous and never
// touch the network.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}
