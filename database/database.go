// Copyright 2025 Blink Labs Software
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

package database

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/flightsurety/surety/database/models"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// Config describes the database configuration
type Config struct {
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	DataDir      string
}

// Database combines the metadata store (sqlite via gorm) holding structured
// ledger entities with the blob store (badger) holding the append-only
// event log. Both run in memory when no data directory is configured
type Database struct {
	logger   *slog.Logger
	metadata *gorm.DB
	blob     *badger.DB
	dataDir  string
}

// New creates a new database instance with optional persistence using the
// provided data directory
func New(cfg *Config) (*Database, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	logger := cfg.Logger
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	metadataDb, err := openMetadata(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata store: %w", err)
	}
	blobDb, err := openBlob(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob store: %w", err)
	}
	db := &Database{
		logger:   logger,
		metadata: metadataDb,
		blob:     blobDb,
		dataDir:  cfg.DataDir,
	}
	if err := db.init(); err != nil {
		return db, err
	}
	return db, nil
}

func openMetadata(dataDir string) (*gorm.DB, error) {
	if dataDir == "" {
		// Use in-memory database when no data directory is specified, useful for testing
		// cache=shared allows multiple connections to share the same in-memory database
		return gorm.Open(
			sqlite.Open("file::memory:?cache=shared"),
			&gorm.Config{
				Logger:                 gormlogger.Discard,
				SkipDefaultTransaction: true,
			},
		)
	}
	// Make sure that we can read data dir, and create if it doesn't exist
	if _, err := os.Stat(dataDir); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read data dir: %w", err)
		}
		if err := os.MkdirAll(dataDir, fs.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
	}
	metadataDbPath := filepath.Join(dataDir, "metadata.sqlite")
	// WAL journal mode, disable sync on write
	metadataConnOpts := "_pragma=journal_mode(WAL)&_pragma=sync(OFF)"
	return gorm.Open(
		sqlite.Open(
			fmt.Sprintf("file:%s?%s", metadataDbPath, metadataConnOpts),
		),
		&gorm.Config{
			Logger:                 gormlogger.Discard,
			SkipDefaultTransaction: true,
		},
	)
}

func openBlob(dataDir string) (*badger.DB, error) {
	if dataDir == "" {
		return badger.Open(
			badger.DefaultOptions("").
				WithInMemory(true).
				WithLogger(nil),
		)
	}
	blobDir := filepath.Join(dataDir, "blob")
	if err := os.MkdirAll(blobDir, fs.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create blob dir: %w", err)
	}
	return badger.Open(
		badger.DefaultOptions(blobDir).
			WithLogger(nil),
	)
}

func (d *Database) init() error {
	// Configure tracing for GORM
	if err := d.metadata.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return err
	}
	// Create table schemas
	for _, model := range models.MigrateModels {
		d.logger.Debug(
			fmt.Sprintf("creating table: %#v", model),
			"component", "database",
		)
		if err := d.metadata.AutoMigrate(model); err != nil {
			return err
		}
	}
	return nil
}

// Logger returns the logger instance
func (d *Database) Logger() *slog.Logger {
	return d.logger
}

// DataDir returns the path to the data directory used for storage
func (d *Database) DataDir() string {
	return d.dataDir
}

// Metadata returns the underlying metadata store instance
func (d *Database) Metadata() *gorm.DB {
	return d.metadata
}

// Blob returns the underlying blob store instance
func (d *Database) Blob() *badger.DB {
	return d.blob
}

// Transaction starts a new database transaction and returns a handle to it
func (d *Database) Transaction(readWrite bool) *Txn {
	return NewTxn(d, readWrite)
}

// Close cleans up the database connections
func (d *Database) Close() error {
	var err error
	if d.metadata != nil {
		if sqlDb, sqlErr := d.metadata.DB(); sqlErr == nil {
			err = errors.Join(err, sqlDb.Close())
		}
	}
	if d.blob != nil {
		err = errors.Join(err, d.blob.Close())
	}
	return err
}
