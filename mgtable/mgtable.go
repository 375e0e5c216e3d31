// Package mgtable implements the mG lookup table: the precomputed
// inverse of m ↦ m·G for m in [0, M_max) that turns EC-ElGamal "small
// message" decryption from an O(M_max) discrete-log search into an
// O(log log N) interpolation search over a sorted, on-disk table.
package mgtable

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/EllipticPIR/libepir-go/curve"
	"github.com/EllipticPIR/libepir-go/elgamal"
	"github.com/EllipticPIR/libepir-go/log"
)

// DefaultMMaxMod and DefaultMMax set the default message-space size:
// 2^24 entries, about 576 MiB on disk.
const (
	DefaultMMaxMod = 24
	DefaultMMax    = 1 << DefaultMMaxMod

	// EntrySize is the fixed on-disk width of one table record: 32
	// bytes of compressed point, 4 bytes of little-endian scalar.
	EntrySize = curve.PointSize + 4

	defaultDataDir  = ".EllipticPIR"
	defaultFileName = "mG.bin"
)

// ErrDecryptionFailed is returned when a point has no matching entry
// in the table: the ciphertext does not encrypt any m in [0, M_max)
// under the key used to decrypt it.
var ErrDecryptionFailed = errors.New("mgtable: decryption failed")

// ErrEnvMissing is returned when HOME is unset and a default path was
// requested.
var ErrEnvMissing = errors.New("mgtable: HOME environment variable is not set")

// Entry is one record of the table: a compressed point and the scalar
// m such that point == compress(m·G).
type Entry struct {
	Point  [curve.PointSize]byte
	Scalar uint32
}

// DecryptionContext is an immutable, sorted mG table shared read-only
// across goroutines. Constructing one is expensive (generation takes
// minutes, loading a ~576 MiB file takes seconds); callers are
// expected to build or load it once per process and hold it for the
// lifetime of the session. Where that singleton lives (a package-level
// once-initialized value, a field on a long-lived client, a local in
// main) is left to the caller.
type DecryptionContext struct {
	entries []Entry
}

// NewDecryptionContext wraps an already-sorted entry slice. It does
// not re-sort or validate; use Generate+Sort, or Load, to get a
// correctly ordered slice.
func NewDecryptionContext(entries []Entry) *DecryptionContext {
	return &DecryptionContext{entries: entries}
}

// Len returns the number of entries in the table.
func (ctx *DecryptionContext) Len() int { return len(ctx.entries) }

// Entries returns the context's underlying, sorted entry slice. The
// caller must not mutate it: it is shared read-only across goroutines.
func (ctx *DecryptionContext) Entries() []Entry { return ctx.entries }

// DefaultPath returns $HOME/.EllipticPIR/mG.bin, failing with
// ErrEnvMissing if HOME is unset.
func DefaultPath() (string, error) {
	home := os.Getenv("HOME")
	if home == "" {
		return "", ErrEnvMissing
	}
	return filepath.Join(home, defaultDataDir, defaultFileName), nil
}

// Generate computes entries for every m in [0, mMax) using
// workerCount goroutines (workerCount <= 0 picks runtime.NumCPU()).
// Each worker t owns the disjoint scalar sequence t, t+T, t+2T, ...
// and advances its running point by a constant stride rather than
// recomputing a scalar multiplication at every step. Workers emit
// entries over a shared channel to a single collector goroutine,
// which accumulates them in arrival order (unspecified across workers)
// and, if progress is non-nil, calls it exactly mMax times with
// strictly increasing counts 1..mMax.
func Generate(mMax uint32, workerCount int, progress func(count uint32)) []Entry {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	if workerCount > int(mMax) {
		workerCount = int(mMax)
	}
	if workerCount < 1 {
		workerCount = 1
	}

	entriesCh := make(chan Entry, workerCount*4)
	var wg sync.WaitGroup
	stride := curve.ScalarBaseMult(curve.ScalarFromUint64(uint64(workerCount)))

	for t := 0; t < workerCount; t++ {
		wg.Add(1)
		go func(t uint32) {
			defer wg.Done()
			point := curve.ScalarBaseMult(curve.ScalarFromUint64(uint64(t)))
			for m := t; m < mMax; m += uint32(workerCount) {
				entriesCh <- Entry{Point: point.Bytes(), Scalar: m}
				point = point.Add(stride)
			}
		}(uint32(t))
	}
	go func() {
		wg.Wait()
		close(entriesCh)
	}()

	out := make([]Entry, 0, mMax)
	var count uint32
	for e := range entriesCh {
		out = append(out, e)
		count++
		if progress != nil {
			progress(count)
		}
	}
	return out
}

// Sort orders entries lexicographically by their 32 point bytes, the
// order interpolation search requires. No ecosystem parallel-sort
// library appears anywhere in the example corpus this module is
// grounded on, so this uses sort.Slice; see DESIGN.md.
func Sort(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return pointLess(entries[i].Point, entries[j].Point)
	})
}

func pointLess(a, b [curve.PointSize]byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// Save writes entries to w in the fixed 36-byte-per-record format:
// [0:32) point, [32:36) scalar as little-endian uint32. No header or
// footer. Entries are written in their current slice order; callers
// are expected to have sorted first if the output needs to be
// searchable.
func Save(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	var buf [EntrySize]byte
	for _, e := range entries {
		copy(buf[:curve.PointSize], e.Point[:])
		binary.LittleEndian.PutUint32(buf[curve.PointSize:], e.Scalar)
		if _, err := bw.Write(buf[:]); err != nil {
			return fmt.Errorf("mgtable: write entry: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("mgtable: flush: %w", err)
	}
	return nil
}

// Load reads entries from r until EOF. A trailing short read (fewer
// than EntrySize bytes) is treated as end of file, not an error.
func Load(r io.Reader) ([]Entry, error) {
	br := bufio.NewReader(r)
	var entries []Entry
	var buf [EntrySize]byte
	for {
		n, err := io.ReadFull(br, buf[:])
		if n == EntrySize {
			var e Entry
			copy(e.Point[:], buf[:curve.PointSize])
			e.Scalar = binary.LittleEndian.Uint32(buf[curve.PointSize:])
			entries = append(entries, e)
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return entries, nil
			}
			return nil, fmt.Errorf("mgtable: read entry: %w", err)
		}
	}
}

// LoadFile opens path and loads the table from it, wrapping any
// filesystem failure as an I/O error.
func LoadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mgtable: open %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Warnw("failed to close mG table file", "path", path, "error", cerr)
		}
	}()
	return Load(f)
}

// SaveFile creates (or truncates) path and writes entries to it.
func SaveFile(path string, entries []Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("mgtable: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Warnw("failed to close mG table file", "path", path, "error", cerr)
		}
	}()
	return Save(f, entries)
}

// Search performs interpolation search for point over the table,
// treating the first four bytes of each point as a big-endian uint32
// key. A table with fewer than two entries reports absence for every
// point. It assumes, without checking, that entries is sorted
// ascending by point.
func (ctx *DecryptionContext) Search(point [curve.PointSize]byte) (uint32, bool) {
	entries := ctx.entries
	n := len(entries)
	if n < 2 {
		return 0, false
	}
	imin, imax := 0, n-1
	left := keyOf(entries[imin].Point)
	right := keyOf(entries[imax].Point)
	me := keyOf(point)
	for imin <= imax {
		if left >= right {
			return 0, false
		}
		// imid = imin + (imax-imin)*(me-left)/(right-left), integer arithmetic.
		num := int64(imax-imin) * int64(me-left)
		den := int64(right - left)
		imid := imin + int(num/den)
		if imid < imin || imid > imax {
			return 0, false
		}
		switch cmpPoints(entries[imid].Point, point) {
		case 0:
			return entries[imid].Scalar, true
		case -1:
			left = keyOf(entries[imid].Point)
			imin = imid + 1
			if imin > imax {
				return 0, false
			}
		default:
			right = keyOf(entries[imid].Point)
			imax = imid - 1
			if imax < imin {
				return 0, false
			}
		}
	}
	return 0, false
}

func keyOf(point [curve.PointSize]byte) uint32 {
	return binary.BigEndian.Uint32(point[:4])
}

func cmpPoints(a, b [curve.PointSize]byte) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Decrypt recovers the plaintext message m encrypted in cipher under
// priv, by first computing the plaintext point M = c2 - x·c1 and then
// resolving M's discrete log through the table. It returns
// ErrDecryptionFailed if no entry matches M, which means cipher does
// not encrypt any m in [0, M_max) under priv.
func (ctx *DecryptionContext) Decrypt(priv *elgamal.PrivateKey, cipher elgamal.Cipher) (uint32, error) {
	m := priv.DecryptToPoint(cipher)
	scalar, ok := ctx.Search(m.Bytes())
	if !ok {
		return 0, ErrDecryptionFailed
	}
	return scalar, nil
}
