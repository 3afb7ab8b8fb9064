package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"bitnames.dev/core/chain"
	"bitnames.dev/core/state"
)

var (
	bucketUtxos             = []byte("utxos")
	bucketCommitmentHeight  = []byte("commitment_height")
	bucketCommitmentOutpoint = []byte("commitment_outpoint")
	bucketKeyCommitment     = []byte("key_commitment")
	bucketCommitmentKey     = []byte("commitment_key")
	bucketKeyValue          = []byte("key_value")
	bucketMeta              = []byte("meta")

	metaBestBlockHeight = []byte("best_block_height")

	allBuckets = [][]byte{
		bucketUtxos, bucketCommitmentHeight, bucketCommitmentOutpoint,
		bucketKeyCommitment, bucketCommitmentKey, bucketKeyValue, bucketMeta,
	}
)

// DB is a bbolt-backed persistence layer for state.StateDB, the
// backing store spec.md §2/§6 names as a pluggable out-of-scope
// dependency. It is intentionally dumb: SaveState and LoadState move
// a whole StateDB across the boundary inside a single bbolt
// transaction, so a crash mid-save can never leave the seven tables
// partially updated (spec.md §5's atomicity requirement, extended
// from memory to disk).
type DB struct {
	db *bolt.DB
}

// Open opens (creating if absent) the bbolt file at path and ensures
// every table bucket exists.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("storage: path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("storage: mkdir: %w", err)
	}
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("storage: open bbolt: %w", err)
	}
	d := &DB{db: bdb}
	if err := d.db.Update(func(tx *bolt.Tx) error {
		for _, b := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("storage: create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// SaveState writes every table of s to disk inside one bbolt
// transaction, replacing whatever was there before. Callers
// typically invoke this after a successful state.Driver.ConnectBody,
// so disk state advances one confirmed block behind memory at worst.
func (d *DB) SaveState(s *state.StateDB) error {
	err := d.db.Update(func(tx *bolt.Tx) error {
		for _, b := range allBuckets {
			if err := tx.DeleteBucket(b); err != nil && err != bolt.ErrBucketNotFound {
				return fmt.Errorf("storage: reset bucket %s: %w", string(b), err)
			}
			if _, err := tx.CreateBucket(b); err != nil {
				return fmt.Errorf("storage: recreate bucket %s: %w", string(b), err)
			}
		}

		utxos := tx.Bucket(bucketUtxos)
		for op, out := range s.Utxos {
			if err := utxos.Put(encodeOutPoint(op), encodeOutput(out)); err != nil {
				return err
			}
		}

		ch := tx.Bucket(bucketCommitmentHeight)
		for c, h := range s.CommitmentHeight {
			if err := ch.Put(c[:], encodeU32(h)); err != nil {
				return err
			}
		}

		co := tx.Bucket(bucketCommitmentOutpoint)
		for c, op := range s.CommitmentOutpoint {
			if err := co.Put(c[:], encodeOutPoint(op)); err != nil {
				return err
			}
		}

		kc := tx.Bucket(bucketKeyCommitment)
		for k, c := range s.KeyCommitment {
			if err := kc.Put(k[:], c[:]); err != nil {
				return err
			}
		}

		ck := tx.Bucket(bucketCommitmentKey)
		for c, k := range s.CommitmentKey {
			if err := ck.Put(c[:], k[:]); err != nil {
				return err
			}
		}

		kv := tx.Bucket(bucketKeyValue)
		for k, v := range s.KeyValue {
			if err := kv.Put(k[:], v[:]); err != nil {
				return err
			}
		}

		return tx.Bucket(bucketMeta).Put(metaBestBlockHeight, encodeU32(s.BestBlockHeight))
	})
	if err != nil {
		return chain.WrapStorage("save state", err)
	}
	return nil
}

// LoadState rebuilds a state.StateDB from disk. An empty database
// (never saved) yields a fresh state.New().
func (d *DB) LoadState() (*state.StateDB, error) {
	s := state.New()
	err := d.db.View(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketUtxos).ForEach(func(k, v []byte) error {
			op, err := decodeOutPoint(k)
			if err != nil {
				return err
			}
			out, err := decodeOutput(v)
			if err != nil {
				return err
			}
			s.Utxos[op] = out
			return nil
		}); err != nil {
			return err
		}

		if err := tx.Bucket(bucketCommitmentHeight).ForEach(func(k, v []byte) error {
			h, err := decodeU32(v)
			if err != nil {
				return err
			}
			var c chain.Commitment
			copy(c[:], k)
			s.CommitmentHeight[c] = h
			return nil
		}); err != nil {
			return err
		}

		if err := tx.Bucket(bucketCommitmentOutpoint).ForEach(func(k, v []byte) error {
			op, err := decodeOutPoint(v)
			if err != nil {
				return err
			}
			var c chain.Commitment
			copy(c[:], k)
			s.CommitmentOutpoint[c] = op
			return nil
		}); err != nil {
			return err
		}

		if err := tx.Bucket(bucketKeyCommitment).ForEach(func(k, v []byte) error {
			var key chain.Key
			copy(key[:], k)
			var c chain.Commitment
			copy(c[:], v)
			s.KeyCommitment[key] = c
			return nil
		}); err != nil {
			return err
		}

		if err := tx.Bucket(bucketCommitmentKey).ForEach(func(k, v []byte) error {
			var c chain.Commitment
			copy(c[:], k)
			var key chain.Key
			copy(key[:], v)
			s.CommitmentKey[c] = key
			return nil
		}); err != nil {
			return err
		}

		if err := tx.Bucket(bucketKeyValue).ForEach(func(k, v []byte) error {
			var key chain.Key
			copy(key[:], k)
			var val chain.Value
			copy(val[:], v)
			s.KeyValue[key] = val
			return nil
		}); err != nil {
			return err
		}

		if meta := tx.Bucket(bucketMeta).Get(metaBestBlockHeight); meta != nil {
			h, err := decodeU32(meta)
			if err != nil {
				return err
			}
			s.BestBlockHeight = h
		}
		return nil
	})
	if err != nil {
		return nil, chain.WrapStorage("load state", err)
	}
	return s, nil
}
