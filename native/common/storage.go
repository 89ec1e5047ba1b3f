package common

// Storage abstracts the subset of state manager functionality shared by the
// native modules. Both *state.Manager and *state.Overlay satisfy it.
type Storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}
