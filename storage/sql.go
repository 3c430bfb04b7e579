/*
 * Copyright (C) 2025 Gaia-X dataspace community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package storage

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gaiax-dataspace/trustnode/storage/log"
)

// SQLConfig specifies config for the SQL database.
type SQLConfig struct {
	// ConnectionString is the sqlite DSN, e.g. file:data/trustnode.db or file::memory:?cache=shared.
	ConnectionString string `koanf:"connection"`
}

// OpenDB opens the SQL database and migrates the given models.
// An empty connection string yields a non-persistent in-memory database.
func OpenDB(config SQLConfig, models ...interface{}) (*gorm.DB, error) {
	connectionString := config.ConnectionString
	if connectionString == "" {
		connectionString = "file::memory:?cache=shared"
		log.Logger().Warn("No database connection string configured, using in-memory database")
	}
	db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{
		Logger:         gormLogrusLogger{underlying: log.Logger(), slowThreshold: slowQueryThreshold},
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.AutoMigrate(models...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}
