package build

import (
	"encoding/binary"

	"github.com/boltdb/bolt"
	"github.com/cespare/xxhash/v2"
	"jodin.dev/jodinc/pkg/jerr"
)

var manifestBucket = []byte("manifest")

// Manifest persists each source file's last-compiled content hash across
// build invocations. A single source file splits into several .jobj
// objects (one per declaration plus its module's static initializer),
// so there's no single output file whose mtime can stand in for "this
// source is unchanged" — a content hash recorded per source path serves
// the same purpose without needing one.
type Manifest struct {
	db *bolt.DB
}

// OpenManifest opens (creating if necessary) the manifest database at path.
func OpenManifest(path string) (*Manifest, error) {
	db, err := bolt.Open(path, 0o644, nil)
	if err != nil {
		return nil, jerr.ErrBuildIO.New(path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(manifestBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, jerr.ErrBuildIO.New(path)
	}
	return &Manifest{db: db}, nil
}

// Close releases the underlying database handle.
func (m *Manifest) Close() error {
	return m.db.Close()
}

// Hash returns a stable content hash for source.
func Hash(source []byte) uint64 {
	return xxhash.Sum64(source)
}

// Unchanged reports whether source's hash matches what was recorded for
// path the last time it was compiled. A path never seen before reports
// false, so it's always built at least once.
func (m *Manifest) Unchanged(path string, source []byte) bool {
	want := Hash(source)
	var got uint64
	m.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(manifestBucket).Get([]byte(path))
		if v != nil {
			got = binary.BigEndian.Uint64(v)
		}
		return nil
	})
	return got != 0 && got == want
}

// Record stores source's content hash for path, replacing any prior entry.
func (m *Manifest) Record(path string, source []byte) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, Hash(source))
	return m.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(manifestBucket).Put([]byte(path), buf)
	})
}
