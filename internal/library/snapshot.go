package library

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// MagicHeader opens every snapshot file.
var MagicHeader = []byte("LOGFLT01")

var ErrInvalidHeader = errors.New("invalid filter snapshot header")

// maxSnapshotSize bounds the compressed payload a snapshot may declare.
const maxSnapshotSize = 64 << 20

// snapshotCodec writes and reads the snapshot layout:
//
//	[MagicHeader][compressed size uint32 LE][zstd(JSON array of Filter)]
type snapshotCodec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func newSnapshotCodec() (*snapshotCodec, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &snapshotCodec{encoder: enc, decoder: dec}, nil
}

func (c *snapshotCodec) write(w io.Writer, filters []Filter) error {
	raw, err := json.Marshal(filters)
	if err != nil {
		return err
	}
	compressed := c.encoder.EncodeAll(raw, make([]byte, 0, len(raw)))

	if _, err := w.Write(MagicHeader); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(compressed))); err != nil {
		return err
	}
	_, err = w.Write(compressed)
	return err
}

func (c *snapshotCodec) read(r io.Reader) ([]Filter, error) {
	header := make([]byte, len(MagicHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrInvalidHeader
		}
		return nil, err
	}
	if !bytes.Equal(header, MagicHeader) {
		return nil, ErrInvalidHeader
	}

	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, fmt.Errorf("read snapshot size: %w", err)
	}
	if size > maxSnapshotSize {
		return nil, fmt.Errorf("snapshot declares %d bytes, limit is %d", size, maxSnapshotSize)
	}

	compressed := make([]byte, size)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, fmt.Errorf("read snapshot body: %w", err)
	}
	raw, err := c.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}

	var filters []Filter
	if err := json.Unmarshal(raw, &filters); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return filters, nil
}

// Save writes the store to path. The file is replaced atomically.
func (s *Store) Save(path string) (err error) {
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		s.metrics.Snapshots.With("outcome", outcome).Add(1)
	}()

	s.mu.RLock()
	version := s.version
	s.mu.RUnlock()
	filters := s.List()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if err := s.codec.write(f, filters); err != nil {
		f.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}

	s.mu.Lock()
	if version > s.saved {
		s.saved = version
	}
	s.mu.Unlock()
	return nil
}

// Load replaces the store contents with the snapshot at path. A missing file
// leaves the store empty and is not an error. Queries are re-parsed so Mode
// and Warnings reflect the running parser.
func (s *Store) Load(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Info("no filter snapshot, starting empty", "path", path)
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	filters, err := s.codec.read(f)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	loaded := make(map[string]*Filter, len(filters))
	for i := range filters {
		fl := filters[i]
		if fl.Name == "" {
			continue
		}
		s.analyze(&fl)
		loaded[fl.Name] = &fl
	}

	s.mu.Lock()
	s.filters = loaded
	s.version++
	s.saved = s.version
	s.metrics.Filters.Set(float64(len(loaded)))
	s.mu.Unlock()

	s.logger.Info("loaded filter library", "path", path, "filters", len(loaded))
	return nil
}
