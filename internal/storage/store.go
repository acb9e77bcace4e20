// Package storage caches generated trajectories on disk, one directory per
// generation bucket holding metadata.json and trajectories.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/anombench/internal/diffusion"
)

const (
	metadataFile     = "metadata.json"
	trajectoriesFile = "trajectories.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// BucketMetadata describes one cached bucket.
type BucketMetadata struct {
	Key       string    `json:"key"`
	Process   string    `json:"process"`
	Alpha     float64   `json:"alpha"`
	TMax      int       `json:"t_max"`
	Count     int       `json:"count"`
	Seed      int64     `json:"seed"`
	Timestamp time.Time `json:"timestamp"`
}

// Save writes the trajectories of a bucket. The metadata file is written last
// so a bucket interrupted mid-write is never reported as cached.
func (s *Store) Save(meta BucketMetadata, trajs []diffusion.Trajectory) error {
	if meta.Key == "" {
		return errors.New("storage: empty bucket key")
	}
	dir := filepath.Join(s.baseDir, meta.Key)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	if err := writeTrajectories(filepath.Join(dir, trajectoriesFile), trajs); err != nil {
		return err
	}

	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.Count = len(trajs)

	metaFile, err := os.Create(filepath.Join(dir, metadataFile))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeTrajectories(path string, trajs []diffusion.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, tr := range trajs {
		row := make([]string, len(tr))
		for i, x := range tr {
			row[i] = strconv.FormatFloat(x, 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// Load returns the cached trajectories of key. ok is false when the bucket
// has not been cached.
func (s *Store) Load(key string) ([]diffusion.Trajectory, bool, error) {
	meta, err := s.Metadata(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, key, trajectoriesFile))
	if err != nil {
		return nil, false, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, false, err
	}
	if len(records) != meta.Count {
		return nil, false, fmt.Errorf("storage: bucket %s lists %d trajectories, found %d", key, meta.Count, len(records))
	}

	trajs := make([]diffusion.Trajectory, len(records))
	for i, record := range records {
		tr := make(diffusion.Trajectory, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, false, fmt.Errorf("storage: bucket %s row %d: %w", key, i, err)
			}
			tr[j] = v
		}
		trajs[i] = tr
	}
	return trajs, true, nil
}

func (s *Store) Metadata(key string) (*BucketMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, key, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta BucketMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// List returns the metadata of every cached bucket sorted by key.
func (s *Store) List() ([]BucketMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BucketMetadata{}, nil
		}
		return nil, err
	}

	out := make([]BucketMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Metadata(entry.Name())
		if err != nil {
			continue
		}
		out = append(out, *meta)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
