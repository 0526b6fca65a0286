package memory

import (
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/0xPolygon/polygon-zenith/blockchain/storage"
	"github.com/0xPolygon/polygon-zenith/helper/hex"
)

// NewMemoryStorage creates the new storage reference with inmemory
func NewMemoryStorage(logger hclog.Logger) (storage.Storage, error) {
	db := &memoryKV{db: map[string][]byte{}}

	return storage.NewKeyValueStorage(logger, db), nil
}

// Factory creates a memory storage, the config is ignored
func Factory(_ map[string]interface{}, logger hclog.Logger) (storage.Storage, error) {
	return NewMemoryStorage(logger)
}

// memoryKV is an in memory implementation of the kv storage
type memoryKV struct {
	lock sync.RWMutex
	db   map[string][]byte
}

func (m *memoryKV) Get(p []byte) ([]byte, bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	v, ok := m.db[hex.EncodeToHex(p)]
	if !ok {
		return nil, false, nil
	}

	return v, true, nil
}

func (m *memoryKV) NewBatch() storage.Batch {
	return &batchMemory{kv: m, ops: map[string][]byte{}}
}

func (m *memoryKV) Close() error {
	return nil
}

// batchMemory buffers writes, a nil value marks a delete
type batchMemory struct {
	kv  *memoryKV
	ops map[string][]byte
}

func (b *batchMemory) Delete(key []byte) {
	b.ops[hex.EncodeToHex(key)] = nil
}

func (b *batchMemory) Put(k []byte, v []byte) {
	b.ops[hex.EncodeToHex(k)] = append([]byte{}, v...)
}

func (b *batchMemory) Write() error {
	b.kv.lock.Lock()
	defer b.kv.lock.Unlock()

	for k, v := range b.ops {
		if v == nil {
			delete(b.kv.db, k)
		} else {
			b.kv.db[k] = v
		}
	}

	return nil
}
