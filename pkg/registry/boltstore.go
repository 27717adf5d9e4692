// Copyright 2026 The Caddy Fleet Controller Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"caddy-fleet/pkg/templating"
)

var (
	// Bucket names
	bucketInstances = []byte("instances")
	bucketTemplates = []byte("templates")
)

// BoltStore implements Store using an embedded BoltDB database. Records are
// stored as JSON keyed by ID.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the database under dataDir and ensures all
// buckets exist.
func NewBoltStore(dataDir string) (*BoltStore, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "fleet.db")

	db, err := bolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketInstances, bucketTemplates} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) put(bucket []byte, id string, record interface{}) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		return tx.Bucket(bucket).Put([]byte(id), data)
	})
}

func (s *BoltStore) get(bucket []byte, kind Kind, id string, record interface{}) error {
	return s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucket).Get([]byte(id))
		if data == nil {
			return &NotFoundError{Kind: kind, ID: id}
		}
		return json.Unmarshal(data, record)
	})
}

func (s *BoltStore) delete(bucket []byte, kind Kind, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b.Get([]byte(id)) == nil {
			return &NotFoundError{Kind: kind, ID: id}
		}
		return b.Delete([]byte(id))
	})
}

// Instance operations

func (s *BoltStore) CreateInstance(instance *Instance) error {
	return s.put(bucketInstances, instance.ID, instance)
}

func (s *BoltStore) GetInstance(id string) (*Instance, error) {
	var instance Instance
	if err := s.get(bucketInstances, KindInstance, id, &instance); err != nil {
		return nil, err
	}
	return &instance, nil
}

func (s *BoltStore) ListInstances() ([]*Instance, error) {
	instances := []*Instance{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketInstances).ForEach(func(_, v []byte) error {
			var instance Instance
			if err := json.Unmarshal(v, &instance); err != nil {
				return err
			}
			instances = append(instances, &instance)
			return nil
		})
	})
	return instances, err
}

func (s *BoltStore) UpdateInstance(instance *Instance) error {
	return s.CreateInstance(instance)
}

func (s *BoltStore) DeleteInstance(id string) error {
	return s.delete(bucketInstances, KindInstance, id)
}

// Template operations

func (s *BoltStore) CreateTemplate(template *templating.Template) error {
	return s.put(bucketTemplates, template.ID, template)
}

func (s *BoltStore) GetTemplate(id string) (*templating.Template, error) {
	var template templating.Template
	if err := s.get(bucketTemplates, KindTemplate, id, &template); err != nil {
		return nil, err
	}
	return &template, nil
}

func (s *BoltStore) ListTemplates() ([]*templating.Template, error) {
	templates := []*templating.Template{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTemplates).ForEach(func(_, v []byte) error {
			var template templating.Template
			if err := json.Unmarshal(v, &template); err != nil {
				return err
			}
			templates = append(templates, &template)
			return nil
		})
	})
	return templates, err
}

func (s *BoltStore) UpdateTemplate(template *templating.Template) error {
	return s.CreateTemplate(template)
}

func (s *BoltStore) DeleteTemplate(id string) error {
	return s.delete(bucketTemplates, KindTemplate, id)
}
