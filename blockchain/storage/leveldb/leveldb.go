package leveldb

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/0xPolygon/polygon-zenith/blockchain/storage"
)

const (
	// minCache is the minimum memory allocate to leveldb
	minCache = 16 // 16 MiB

	// minHandles is the minimum number of files handles to leveldb open files
	minHandles = 16
)

// Factory creates a leveldb storage
func Factory(config map[string]interface{}, logger hclog.Logger) (storage.Storage, error) {
	path, ok := config["path"]
	if !ok {
		return nil, fmt.Errorf("path not found")
	}

	pathStr, ok := path.(string)
	if !ok {
		return nil, fmt.Errorf("path is not a string")
	}

	// host blocks are fsynced on every write unless sync is turned off
	sync := true

	if v, ok := config["sync"]; ok {
		if sync, ok = v.(bool); !ok {
			return nil, fmt.Errorf("sync is not a bool")
		}
	}

	return NewLevelDBStorage(pathStr, sync, logger)
}

// NewLevelDBStorage creates the new storage reference with leveldb
func NewLevelDBStorage(path string, sync bool, logger hclog.Logger) (storage.Storage, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		OpenFilesCacheCapacity: minHandles,
		BlockCacheCapacity:     minCache / 2 * opt.MiB,
		WriteBuffer:            minCache / 4 * opt.MiB,
	})
	if err != nil {
		return nil, err
	}

	logger = logger.Named("leveldb")

	return storage.NewKeyValueStorage(logger, &levelDBKV{
		db:     db,
		write:  &opt.WriteOptions{Sync: sync},
		logger: logger,
	}), nil
}

// levelDBKV is the leveldb implementation of the kv storage
type levelDBKV struct {
	db     *leveldb.DB
	write  *opt.WriteOptions
	logger hclog.Logger
}

// Get retrieves the key-value pair in leveldb storage
func (l *levelDBKV) Get(p []byte) ([]byte, bool, error) {
	data, err := l.db.Get(p, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, false, nil
		}

		return nil, false, err
	}

	return data, true, nil
}

func (l *levelDBKV) NewBatch() storage.Batch {
	return &levelDBBatch{kv: l}
}

// Close closes the leveldb storage instance
func (l *levelDBKV) Close() error {
	return l.db.Close()
}

// levelDBBatch stages the writes of one host block
type levelDBBatch struct {
	kv *levelDBKV
	b  leveldb.Batch
}

func (b *levelDBBatch) Delete(key []byte) {
	b.b.Delete(key)
}

func (b *levelDBBatch) Put(k []byte, v []byte) {
	b.b.Put(k, v)
}

// Write commits the staged records, fsyncing them when the storage is synced
func (b *levelDBBatch) Write() error {
	if err := b.kv.db.Write(&b.b, b.kv.write); err != nil {
		return err
	}

	b.kv.logger.Trace("batch written", "records", b.b.Len(), "sync", b.kv.write.Sync)
	b.b.Reset()

	return nil
}
