// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

package mapstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opengeos/anymap-sub000/pkg/mapwidget"
)

// MapDoc is one saved map: a widget snapshot plus naming metadata.
type MapDoc struct {
	MapId      string             `json:"mapid"`
	Name       string             `json:"name"`
	Backend    string             `json:"backend"`
	CreatedTs  int64              `json:"createdts"`
	ModifiedTs int64              `json:"modifiedts"`
	Snapshot   mapwidget.Snapshot `json:"snapshot"`
}

type mapRowType struct {
	MapId      string `db:"mapid"`
	Name       string `db:"name"`
	Backend    string `db:"backend"`
	CreatedTs  int64  `db:"createdts"`
	ModifiedTs int64  `db:"modifiedts"`
	Snapshot   string `db:"snapshot"`
}

func docFromRow(tx *TxWrap, row mapRowType) *MapDoc {
	doc := &MapDoc{
		MapId:      row.MapId,
		Name:       row.Name,
		Backend:    row.Backend,
		CreatedTs:  row.CreatedTs,
		ModifiedTs: row.ModifiedTs,
	}
	snap := TxReadJson[mapwidget.Snapshot](tx, row.Snapshot)
	if snap != nil {
		doc.Snapshot = *snap
	}
	return doc
}

// InsertMap saves a new map document and returns it.
func InsertMap(ctx context.Context, name string, snap mapwidget.Snapshot) (*MapDoc, error) {
	if name == "" {
		return nil, fmt.Errorf("map name cannot be empty")
	}
	now := time.Now().UnixMilli()
	doc := &MapDoc{
		MapId:      uuid.New().String(),
		Name:       name,
		Backend:    snap.Backend,
		CreatedTs:  now,
		ModifiedTs: now,
		Snapshot:   snap,
	}
	err := WithTx(ctx, func(tx *TxWrap) error {
		query := "INSERT INTO db_map (mapid, name, backend, createdts, modifiedts, snapshot) VALUES (?, ?, ?, ?, ?, ?)"
		tx.Exec(query, doc.MapId, doc.Name, doc.Backend, doc.CreatedTs, doc.ModifiedTs, TxJson(tx, doc.Snapshot))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdateMap replaces the stored snapshot (and optionally the name) for an
// existing map document.
func UpdateMap(ctx context.Context, mapId string, name string, snap mapwidget.Snapshot) error {
	return WithTx(ctx, func(tx *TxWrap) error {
		query := "SELECT count(*) FROM db_map WHERE mapid = ?"
		if tx.GetInt(query, mapId) == 0 {
			return fmt.Errorf("map not found: %q", mapId)
		}
		now := time.Now().UnixMilli()
		if name != "" {
			query = "UPDATE db_map SET name = ?, snapshot = ?, modifiedts = ? WHERE mapid = ?"
			tx.Exec(query, name, TxJson(tx, snap), now, mapId)
		} else {
			query = "UPDATE db_map SET snapshot = ?, modifiedts = ? WHERE mapid = ?"
			tx.Exec(query, TxJson(tx, snap), now, mapId)
		}
		return nil
	})
}

// GetMap loads one map document by id.
func GetMap(ctx context.Context, mapId string) (*MapDoc, error) {
	return WithTxRtn(ctx, func(tx *TxWrap) (*MapDoc, error) {
		query := "SELECT mapid, name, backend, createdts, modifiedts, snapshot FROM db_map WHERE mapid = ?"
		var row mapRowType
		found := tx.Get(&row, query, mapId)
		if !found {
			return nil, fmt.Errorf("map not found: %q", mapId)
		}
		return docFromRow(tx, row), nil
	})
}

// ListMaps returns all saved maps, most recently modified first.
func ListMaps(ctx context.Context) ([]*MapDoc, error) {
	return WithTxRtn(ctx, func(tx *TxWrap) ([]*MapDoc, error) {
		query := "SELECT mapid, name, backend, createdts, modifiedts, snapshot FROM db_map ORDER BY modifiedts DESC"
		var rows []mapRowType
		tx.Select(&rows, query)
		rtn := make([]*MapDoc, 0, len(rows))
		for _, row := range rows {
			rtn = append(rtn, docFromRow(tx, row))
		}
		return rtn, nil
	})
}

// DeleteMap removes a saved map.  Deleting an unknown id is a no-op.
func DeleteMap(ctx context.Context, mapId string) error {
	return WithTx(ctx, func(tx *TxWrap) error {
		query := "DELETE FROM db_map WHERE mapid = ?"
		tx.Exec(query, mapId)
		return nil
	})
}
