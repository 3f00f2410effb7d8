// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to properly configure
// MySQL connections based on the application's configuration.
//
// # Connect
//
// The Connect function establishes a pooled MySQL connection with sane
// timeouts and verifies it with a ping before returning.
//
// # Schema Inspection
//
// The package includes tools to inspect the database schema. The mirror job
// uses them to validate declared destination fields against the destination
// table's columns before any mutation runs.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "mirror_people")
package database
