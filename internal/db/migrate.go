package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	// Catalog snapshot: read-only once imported.
	`CREATE TABLE IF NOT EXISTS catalog_snapshots (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		checksum TEXT NOT NULL,
		synced_at TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS terms (
		id TEXT PRIMARY KEY,
		snapshot_id TEXT NOT NULL REFERENCES catalog_snapshots(id) ON DELETE CASCADE,
		campus TEXT NOT NULL,
		code TEXT NOT NULL,
		year INTEGER NOT NULL,
		season TEXT NOT NULL CHECK(season IN ('WINTER','SPRING','SUMMER','FALL')),
		UNIQUE(snapshot_id, campus, code)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_terms_snapshot ON terms(snapshot_id)`,

	`CREATE TABLE IF NOT EXISTS courses (
		id TEXT PRIMARY KEY,
		snapshot_id TEXT NOT NULL REFERENCES catalog_snapshots(id) ON DELETE CASCADE,
		code TEXT NOT NULL,
		title TEXT NOT NULL,
		credits INTEGER NOT NULL DEFAULT 0 CHECK(credits >= 0),
		active INTEGER NOT NULL DEFAULT 1,
		category TEXT NOT NULL DEFAULT '',
		UNIQUE(snapshot_id, code)
	)`,

	`CREATE TABLE IF NOT EXISTS course_offerings (
		id TEXT PRIMARY KEY,
		snapshot_id TEXT NOT NULL REFERENCES catalog_snapshots(id) ON DELETE CASCADE,
		course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		term_id TEXT NOT NULL REFERENCES terms(id) ON DELETE CASCADE,
		offered INTEGER NOT NULL DEFAULT 1,
		UNIQUE(snapshot_id, course_id, term_id)
	)`,

	`CREATE TABLE IF NOT EXISTS course_rules (
		id TEXT PRIMARY KEY,
		snapshot_id TEXT NOT NULL REFERENCES catalog_snapshots(id) ON DELETE CASCADE,
		course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		kind TEXT NOT NULL CHECK(kind IN ('PREREQ','COREQ','RESTRICTION')),
		rule_json TEXT NOT NULL,
		schema_version INTEGER NOT NULL DEFAULT 1,
		notes TEXT NOT NULL DEFAULT '',
		UNIQUE(snapshot_id, course_id, kind)
	)`,

	`CREATE TABLE IF NOT EXISTS programs (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		campus TEXT NOT NULL,
		UNIQUE(code, campus)
	)`,

	`CREATE TABLE IF NOT EXISTS requirement_sets (
		id TEXT PRIMARY KEY,
		snapshot_id TEXT NOT NULL REFERENCES catalog_snapshots(id) ON DELETE CASCADE,
		program_id TEXT NOT NULL REFERENCES programs(id),
		label TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS requirement_nodes (
		id TEXT PRIMARY KEY,
		requirement_set_id TEXT NOT NULL REFERENCES requirement_sets(id) ON DELETE CASCADE,
		order_index INTEGER NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		rule_json TEXT NOT NULL,
		schema_version INTEGER NOT NULL DEFAULT 2,
		UNIQUE(requirement_set_id, order_index)
	)`,

	`CREATE TABLE IF NOT EXISTS program_versions (
		id TEXT PRIMARY KEY,
		program_id TEXT NOT NULL REFERENCES programs(id),
		snapshot_id TEXT NOT NULL REFERENCES catalog_snapshots(id),
		requirement_set_id TEXT NOT NULL REFERENCES requirement_sets(id),
		catalog_year TEXT NOT NULL,
		campus TEXT NOT NULL,
		effective_from TEXT NOT NULL,
		effective_to TEXT,
		UNIQUE(program_id, catalog_year, campus)
	)`,

	// Plans pin a snapshot and requirement set for life.
	`CREATE TABLE IF NOT EXISTS degree_plans (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		program_version_id TEXT NOT NULL REFERENCES program_versions(id),
		name TEXT NOT NULL,
		pinned_snapshot_id TEXT NOT NULL REFERENCES catalog_snapshots(id),
		pinned_requirement_set_id TEXT NOT NULL REFERENCES requirement_sets(id),
		certification_state TEXT NOT NULL DEFAULT 'DRAFT'
			CHECK(certification_state IN ('DRAFT','READY','CERTIFIED')),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_degree_plans_user ON degree_plans(user_id)`,

	`CREATE TABLE IF NOT EXISTS plan_items (
		id TEXT PRIMARY KEY,
		plan_id TEXT NOT NULL REFERENCES degree_plans(id) ON DELETE CASCADE,
		term_id TEXT NOT NULL REFERENCES terms(id),
		position INTEGER NOT NULL CHECK(position >= 1),
		raw_input TEXT NOT NULL DEFAULT '',
		canonical_code TEXT,
		course_id TEXT REFERENCES courses(id),
		status TEXT NOT NULL DEFAULT 'DRAFT' CHECK(status IN ('DRAFT','VALID','INVALID')),
		completion_status TEXT NOT NULL DEFAULT 'BLANK'
			CHECK(completion_status IN ('YES','IN_PROGRESS','NO','BLANK')),
		validation_reason TEXT,
		validation_meta TEXT,
		last_validated_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(plan_id, term_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_plan_items_plan ON plan_items(plan_id)`,
	`CREATE INDEX IF NOT EXISTS idx_plan_items_canonical ON plan_items(canonical_code)`,

	// Audits are append-only.
	`CREATE TABLE IF NOT EXISTS degree_audits (
		id TEXT PRIMARY KEY,
		plan_id TEXT NOT NULL REFERENCES degree_plans(id) ON DELETE CASCADE,
		snapshot_id TEXT NOT NULL,
		requirement_set_id TEXT NOT NULL,
		computed_at TEXT NOT NULL,
		has_unsupported_rules INTEGER NOT NULL DEFAULT 0,
		summary_json TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_degree_audits_plan ON degree_audits(plan_id, computed_at)`,

	`CREATE TABLE IF NOT EXISTS degree_audit_requirements (
		id TEXT PRIMARY KEY,
		audit_id TEXT NOT NULL REFERENCES degree_audits(id) ON DELETE CASCADE,
		requirement_node_id TEXT NOT NULL,
		order_index INTEGER NOT NULL,
		status TEXT NOT NULL CHECK(status IN ('SATISFIED','PENDING','MISSING','UNKNOWN')),
		detail_json TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_requirements_audit ON degree_audit_requirements(audit_id)`,

	`CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		actor_user_id TEXT NOT NULL,
		action TEXT NOT NULL,
		resource_type TEXT NOT NULL,
		resource_id TEXT NOT NULL,
		meta_json TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_log_resource ON audit_log(resource_type, resource_id)`,
}
