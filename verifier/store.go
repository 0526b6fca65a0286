package verifier

import (
	"bytes"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	bolt "go.etcd.io/bbolt"

	"github.com/0xPolygon/polygon-zenith/helper/common"
)

/*
Bolt DB schema:

verdicts/
|--> (rollupChainId+hostBlock) -> *Verdict (json marshalled)
*/

var (
	// bucket to store the verdicts of derived rollup blocks
	verdictsBucket = []byte("verdicts")

	ErrVerdictNotFound = errors.New("verdict not found")

	json = jsoniter.ConfigCompatibleWithStandardLibrary
)

// Store persists verdicts in a bolt database
type Store struct {
	db *bolt.DB
}

// NewStore opens or creates the verdict store at path
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}

	if err := db.Update(s.initialize); err != nil {
		_ = db.Close()

		return nil, err
	}

	return s, nil
}

// initialize creates necessary buckets in DB if they don't already exist
func (s *Store) initialize(tx *bolt.Tx) error {
	if _, err := tx.CreateBucketIfNotExists(verdictsBucket); err != nil {
		return fmt.Errorf("failed to create bucket=%s: %w", string(verdictsBucket), err)
	}

	return nil
}

func verdictKey(rollupChainID, hostBlock uint64) []byte {
	return bytes.Join([][]byte{
		common.EncodeUint64ToBytes(rollupChainID),
		common.EncodeUint64ToBytes(hostBlock),
	}, nil)
}

// PutVerdicts inserts verdicts in a single transaction
func (s *Store) PutVerdicts(verdicts []*Verdict) error {
	if len(verdicts) == 0 {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(verdictsBucket)

		for _, v := range verdicts {
			raw, err := json.Marshal(v)
			if err != nil {
				return err
			}

			if err := bucket.Put(verdictKey(v.RollupChainID, v.HostBlock), raw); err != nil {
				return err
			}
		}

		return nil
	})
}

// GetVerdict returns the verdict of the rollup block correlated with hostBlock
func (s *Store) GetVerdict(rollupChainID, hostBlock uint64) (*Verdict, error) {
	var verdict *Verdict

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(verdictsBucket).Get(verdictKey(rollupChainID, hostBlock))
		if v == nil {
			return fmt.Errorf("%w: chain %d, host block %d", ErrVerdictNotFound, rollupChainID, hostBlock)
		}

		return json.Unmarshal(v, &verdict)
	})

	return verdict, err
}

// Verdicts returns the verdicts of a rollup chain ordered by host block
func (s *Store) Verdicts(rollupChainID uint64) ([]*Verdict, error) {
	var verdicts []*Verdict

	prefix := common.EncodeUint64ToBytes(rollupChainID)

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(verdictsBucket).Cursor()

		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var verdict *Verdict
			if err := json.Unmarshal(v, &verdict); err != nil {
				return err
			}

			verdicts = append(verdicts, verdict)
		}

		return nil
	})

	return verdicts, err
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
