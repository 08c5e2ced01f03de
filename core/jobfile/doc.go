// Package jobfile loads reconciliation jobs from YAML files.
//
// A job names a source and a target table together with their connections,
// and a comparison section, a consistency section, or both:
//
//	source:
//	  connection: {driver: mysql, host: legacy-db, user: app, password: ${LEGACY_PASSWORD}, name: crm}
//	  table: users
//	target:
//	  connection: {driver: sqlite, name: ./accounts.db}
//	  table: accounts
//	comparison:
//	  primary_keys: [id]
//	  key_mappings: {id: user_id}
//	  ignored_columns: [updated_at]
//	consistency:
//	  join_mappings: {id: user_id}
//	  comparison_fields:
//	    - {source_field: email, target_field: mail}
package jobfile
