// Package mirror implements the mirror job: a one-way synchronization from a
// source dataset into a destination database table, driven by a declarative
// rule document.
//
// # Rules
//
// The rule document is a JSON object stored in object storage. Each rule
// binds one destination column to either a source field (direct copy) or a
// template that concatenates source fields, and may mark the column as part
// of the matching key:
//
//	{
//	  "rules": [
//	    {"dest": "id", "source": "id", "key": true},
//	    {"dest": "full_name", "template": "{first_name} {last_name}"}
//	  ]
//	}
//
// # Flow
//
// The Service loads the rules, validates destination columns against the
// live table schema, loads both datasets concurrently, and hands everything
// to the engine. Plan reports the change set; Apply executes it against the
// destination table, guarded by dry-run and confirmation flags.
package mirror
