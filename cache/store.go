package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/dkoval/gridbench/bench"
)

// ErrNotFound reports a read of a key with no persisted record.
var ErrNotFound = errors.New("result not found")

// EnvResultDir overrides the result base directory when set.
const EnvResultDir = "GRIDBENCH_RESULT_DIR"

const resultsDirName = "results"

// Record is the persisted form of one successful run: the structured
// result plus the reconstructed console log and the script that produced
// it. Written once per key and never mutated afterwards.
type Record struct {
	bench.Result

	Console string `json:"console"`
	Script  string `json:"script"`
}

// Store maps cache keys to record files under
// <base>/results/<benchmark>/<remainder>.json.
type Store struct {
	base string
}

// NewStore returns a Store rooted at baseDir. An empty baseDir falls
// back to EnvResultDir and then to the current working directory.
func NewStore(baseDir string) *Store {
	if baseDir == "" {
		baseDir = os.Getenv(EnvResultDir)
	}

	if baseDir == "" {
		baseDir = "."
	}

	return &Store{base: baseDir}
}

// Path returns the file a key maps to.
func (s *Store) Path(key string) string {
	name, remainder, ok := strings.Cut(key, "/")
	if !ok {
		remainder = name
		name = ""
	}

	return filepath.Join(s.base, resultsDirName, name, remainder+".json")
}

// Exists reports whether a record is persisted under key.
func (s *Store) Exists(key string) bool {
	_, err := os.Stat(s.Path(key))

	return err == nil
}

// Read loads the record persisted under key. Returns ErrNotFound when no
// record exists; any other failure means the cache medium itself is
// broken and is fatal to the run.
func (s *Store) Read(key string) (*Record, error) {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}

		return nil, fmt.Errorf("read cached result %s: %w", key, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode cached result %s: %w", key, err)
	}

	return &rec, nil
}

// Write persists rec under key, creating parent directories as needed.
// An already-present file is the record of truth and is left untouched:
// cached results are immutable. The write lands via an atomic rename so
// readers never observe a torn file.
func (s *Store) Write(key string, rec *Record) error {
	path := s.Path(key)

	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create result dir for %s: %w", key, err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result %s: %w", key, err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write result %s: %w", key, err)
	}

	return nil
}

// Keys lists the persisted keys for one benchmark, sorted. A missing
// benchmark directory is an empty list, not an error.
func (s *Store) Keys(benchmark string) ([]string, error) {
	dir := filepath.Join(s.base, resultsDirName, benchmark)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("list results for %s: %w", benchmark, err)
	}

	keys := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}

		keys = append(keys, benchmark+"/"+strings.TrimSuffix(e.Name(), ".json"))
	}

	sort.Strings(keys)

	return keys, nil
}

// Benchmarks lists the benchmark names with at least one persisted
// record, sorted.
func (s *Store) Benchmarks() ([]string, error) {
	dir := filepath.Join(s.base, resultsDirName)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("list result dir: %w", err)
	}

	names := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}

	sort.Strings(names)

	return names, nil
}
