// Package resolver is the off-chain, untrusted name resolver of
// spec.md §4.6: it stores and serves the plaintext behind a
// registered name, verifying on every store and lookup that the
// plaintext still hashes to the Value the chain currently binds to
// that name. Nothing in this package is consulted by chain or state
// validation — it is a convenience layer sitting on top of a
// read-only state.Snapshot.
package resolver

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"bitnames.dev/core/chain"
	"bitnames.dev/core/crypto"
	"bitnames.dev/core/state"
)

// Directory persists name -> plaintext value pairs as one file per
// key under a configured local directory, grounded on the same
// write-temp/fsync/rename idiom the teacher uses for MANIFEST.json.
type Directory struct {
	dir string
}

// Open ensures dir exists and returns a Directory rooted at it.
func Open(dir string) (*Directory, error) {
	if dir == "" {
		return nil, fmt.Errorf("resolver: dir required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("resolver: mkdir %s: %w", dir, err)
	}
	return &Directory{dir: dir}, nil
}

func (d *Directory) pathFor(key chain.Key) string {
	return filepath.Join(d.dir, hex.EncodeToString(key[:])+".val")
}

// Store persists value under name iff the chain currently binds
// content_hash(name) to content_hash(value) (spec.md §4.6). It
// returns an error, and writes nothing, on any mismatch.
func (d *Directory) Store(p crypto.Provider, snap state.Snapshot, name, value string) error {
	key := chain.Key(p.ContentHash([]byte(name)))
	bound, ok := snap.KeyValueOf(key)
	if !ok {
		return fmt.Errorf("resolver: %q is not registered", name)
	}
	got := chain.Value(p.ContentHash([]byte(value)))
	if got != bound {
		return fmt.Errorf("resolver: %q does not hash to the value bound to %q", value, name)
	}
	return writeFileAtomic(d.pathFor(key), []byte(value))
}

// Lookup returns the plaintext stored for name iff it still hashes to
// the Value currently bound on-chain (spec.md §4.6, P9). A stored
// value that no longer matches — because the binding moved on, or
// the file was tampered with — is reported as a mismatch rather than
// returned.
func (d *Directory) Lookup(p crypto.Provider, snap state.Snapshot, name string) (string, error) {
	key := chain.Key(p.ContentHash([]byte(name)))
	bound, ok := snap.KeyValueOf(key)
	if !ok {
		return "", fmt.Errorf("resolver: %q is not registered", name)
	}
	stored, err := os.ReadFile(d.pathFor(key)) // #nosec G304 -- path is derived from a content hash computed above, not attacker-controlled.
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("resolver: no plaintext stored for %q", name)
		}
		return "", fmt.Errorf("resolver: read %q: %w", name, err)
	}
	got := chain.Value(p.ContentHash(stored))
	if got != bound {
		return "", fmt.Errorf("resolver: store has invalid value for %q", name)
	}
	return string(stored), nil
}

// writeFileAtomic writes data to a temp file, fsyncs it, then renames
// it over final — the same crash-safe commit sequence as the
// teacher's writeManifestAtomic.
func writeFileAtomic(final string, data []byte) error {
	tmp := final + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600) // #nosec G304 -- tmp path is derived from a content hash, not attacker-controlled.
	if err != nil {
		return fmt.Errorf("resolver: open tmp: %w", err)
	}
	_, werr := f.Write(data)
	serr := f.Sync()
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("resolver: write tmp: %w", werr)
	}
	if serr != nil {
		return fmt.Errorf("resolver: fsync tmp: %w", serr)
	}
	if cerr != nil {
		return fmt.Errorf("resolver: close tmp: %w", cerr)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("resolver: rename: %w", err)
	}

	dir, err := os.Open(filepath.Dir(final)) // #nosec G304 -- directory path is operator-configured at Directory construction.
	if err != nil {
		return fmt.Errorf("resolver: fsync dir open: %w", err)
	}
	if err := dir.Sync(); err != nil {
		_ = dir.Close()
		return fmt.Errorf("resolver: fsync dir: %w", err)
	}
	return dir.Close()
}
