// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

// mapstore persists widget snapshots as named map documents in sqlite.
package mapstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/opengeos/anymap-sub000/pkg/mapbase"
	"github.com/sawka/txwrap"

	sqlite3migrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	dbfs "github.com/opengeos/anymap-sub000/db"
)

const MapStoreDBName = "anymap.db"

type TxWrap = txwrap.TxWrap

var globalDB *sqlx.DB

func InitMapStore() error {
	ctx, cancelFn := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancelFn()
	var err error
	globalDB, err = MakeDB(ctx)
	if err != nil {
		return err
	}
	err = MigrateMapStore()
	if err != nil {
		return err
	}
	log.Printf("mapstore initialized\n")
	return nil
}

func CloseMapStore() {
	if globalDB != nil {
		globalDB.Close()
		globalDB = nil
	}
}

func GetDBName() string {
	dbDir := mapbase.GetDBDir()
	return path.Join(dbDir, MapStoreDBName)
}

func MakeDB(ctx context.Context) (*sqlx.DB, error) {
	if err := mapbase.EnsureDir(mapbase.GetDBDir()); err != nil {
		return nil, err
	}
	dbName := GetDBName()
	rtn, err := sqlx.Open("sqlite3", fmt.Sprintf("file:%s?mode=rwc&_journal_mode=WAL&_busy_timeout=5000", dbName))
	if err != nil {
		return nil, err
	}
	rtn.DB.SetMaxOpenConns(1)
	return rtn, nil
}

func MakeMapStoreMigrate() (*migrate.Migrate, error) {
	fsVar, err := iofs.New(dbfs.MapstoreMigrationFS, "migrations-mapstore")
	if err != nil {
		return nil, fmt.Errorf("opening iofs: %w", err)
	}
	mdriver, err := sqlite3migrate.WithInstance(globalDB.DB, &sqlite3migrate.Config{})
	if err != nil {
		return nil, fmt.Errorf("making mapstore migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", fsVar, "sqlite3", mdriver)
	if err != nil {
		return nil, fmt.Errorf("making mapstore migration db[%s]: %w", GetDBName(), err)
	}
	return m, nil
}

func MigrateMapStore() error {
	m, err := MakeMapStoreMigrate()
	if err != nil {
		return err
	}
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migrating mapstore: %w", err)
	}
	return nil
}

func GetMigrateVersion(m *migrate.Migrate) (uint, bool, error) {
	if m == nil {
		var err error
		m, err = MakeMapStoreMigrate()
		if err != nil {
			return 0, false, err
		}
	}
	curVersion, dirty, err := m.Version()
	if err == migrate.ErrNilVersion {
		return 0, false, nil
	}
	return curVersion, dirty, err
}

func WithTx(ctx context.Context, fn func(tx *TxWrap) error) error {
	return txwrap.WithTx(ctx, globalDB, fn)
}

func WithTxRtn[RT any](ctx context.Context, fn func(tx *TxWrap) (RT, error)) (RT, error) {
	return txwrap.WithTxRtn(ctx, globalDB, fn)
}

func TxJson(tx *TxWrap, v any) string {
	barr, err := json.Marshal(v)
	if err != nil {
		tx.SetErr(fmt.Errorf("json marshal (%T): %w", v, err))
		return ""
	}
	return string(barr)
}

func TxReadJson[T any](tx *TxWrap, jsonData string) *T {
	if jsonData == "" {
		return nil
	}
	var v T
	err := json.Unmarshal([]byte(jsonData), &v)
	if err != nil {
		tx.SetErr(fmt.Errorf("json unmarshal (%T): %w", v, err))
	}
	return &v
}
