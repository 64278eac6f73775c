// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

package db

import "embed"

//go:embed migrations-mapstore/*.sql
var MapstoreMigrationFS embed.FS
