package types

import "github.com/benbjohnson/immutable"

// StorageAdapter presents one contract's persistent storage map as the
// mutable KVStore an engine works against during a single call. Writes
// replace the internal map; the map given at construction is never touched,
// so earlier snapshots stay valid. After the call the host collects the
// updated map via Current and writes it back to the chain store.
type StorageAdapter struct {
	current ContractStorage
}

// NewStorageAdapter seeds an adapter with the given storage map. A nil map is
// treated as empty.
func NewStorageAdapter(m ContractStorage) *StorageAdapter {
	if m == nil {
		m = NewContractStorage()
	}
	return &StorageAdapter{current: m}
}

// Current returns the storage map including all writes made through the
// adapter.
func (s *StorageAdapter) Current() ContractStorage {
	return s.current
}

func (s *StorageAdapter) Get(key []byte) []byte {
	v, ok := s.current.Get(string(key))
	if !ok {
		return nil
	}
	return []byte(v)
}

func (s *StorageAdapter) Set(key, value []byte) {
	s.current = s.current.Set(string(key), string(value))
}

func (s *StorageAdapter) Delete(key []byte) {
	s.current = s.current.Delete(string(key))
}

func (s *StorageAdapter) Iterator(start, end []byte) Iterator {
	itr := s.current.Iterator()
	if start != nil {
		itr.Seek(string(start))
	}
	it := &storageIterator{itr: itr, end: end}
	it.Next()
	return it
}

type storageIterator struct {
	itr   *immutable.SortedMapIterator[string, string]
	end   []byte
	key   string
	value string
	valid bool
}

func (it *storageIterator) Next() {
	k, v, ok := it.itr.Next()
	if !ok || (it.end != nil && k >= string(it.end)) {
		it.valid = false
		return
	}
	it.key, it.value = k, v
	it.valid = true
}

func (it *storageIterator) Valid() bool { return it.valid }

func (it *storageIterator) Key() []byte {
	if !it.valid {
		return nil
	}
	return []byte(it.key)
}

func (it *storageIterator) Value() []byte {
	if !it.valid {
		return nil
	}
	return []byte(it.value)
}

func (it *storageIterator) Close() {}
