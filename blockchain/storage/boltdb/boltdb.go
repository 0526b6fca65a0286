package boltdb

import (
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	bolt "go.etcd.io/bbolt"

	"github.com/0xPolygon/polygon-zenith/blockchain/storage"
)

var bucket = []byte("chain")

// Factory creates a boltdb storage
func Factory(config map[string]interface{}, logger hclog.Logger) (storage.Storage, error) {
	path, ok := config["path"]
	if !ok {
		return nil, fmt.Errorf("path not found")
	}

	pathStr, ok := path.(string)
	if !ok {
		return nil, fmt.Errorf("path is not a string")
	}

	return NewBoltDBStorage(filepath.Join(pathStr, "chain.db"), logger)
}

// NewBoltDBStorage creates the new storage reference with boltdb
func NewBoltDBStorage(path string, logger hclog.Logger) (storage.Storage, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)

		return err
	})
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	return storage.NewKeyValueStorage(logger.Named("boltdb"), &boltDBKV{db: db}), nil
}

// boltDBKV is the boltdb implementation of the kv storage
type boltDBKV struct {
	db *bolt.DB
}

func (l *boltDBKV) Get(p []byte) ([]byte, bool, error) {
	var data []byte

	err := l.db.View(func(tx *bolt.Tx) error {
		// v is only valid for the lifetime of the tx
		if v := tx.Bucket(bucket).Get(p); v != nil {
			data = append([]byte{}, v...)
		}

		return nil
	})

	return data, data != nil, err
}

func (l *boltDBKV) NewBatch() storage.Batch {
	return &batchBoltDB{db: l.db}
}

func (l *boltDBKV) Close() error {
	return l.db.Close()
}

type batchOp struct {
	key, value []byte
	delete     bool
}

type batchBoltDB struct {
	db  *bolt.DB
	ops []batchOp
}

func (b *batchBoltDB) Delete(key []byte) {
	b.ops = append(b.ops, batchOp{key: key, delete: true})
}

func (b *batchBoltDB) Put(k []byte, v []byte) {
	b.ops = append(b.ops, batchOp{key: k, value: v})
}

// Write applies the buffered operations in a single transaction
func (b *batchBoltDB) Write() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucket)

		for _, op := range b.ops {
			var err error
			if op.delete {
				err = bkt.Delete(op.key)
			} else {
				err = bkt.Put(op.key, op.value)
			}

			if err != nil {
				return err
			}
		}

		return nil
	})
}
