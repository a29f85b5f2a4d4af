// Package sqlite implements the SQLite backend for the restroom facility
// knowledge store.
package sqlite

// Schema DDL for all tables. Every table carries an autoincrement seq column
// that records insertion order; entity identity lives in the *_id columns.
const (
	createUsers = `CREATE TABLE IF NOT EXISTS users (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

	createFacilities = `CREATE TABLE IF NOT EXISTS facilities (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    facility_id TEXT NOT NULL UNIQUE,
    place_id TEXT NOT NULL UNIQUE,
    name TEXT,
    latitude REAL NOT NULL,
    longitude REAL NOT NULL,
    address TEXT,
    rating REAL,
    created_at TEXT NOT NULL
);`

	createComments = `CREATE TABLE IF NOT EXISTS comments (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    comment_id TEXT NOT NULL UNIQUE,
    facility_id TEXT NOT NULL,
    username TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at TEXT NOT NULL,
    FOREIGN KEY (facility_id) REFERENCES facilities(facility_id) ON DELETE CASCADE
);`

	createCodes = `CREATE TABLE IF NOT EXISTS codes (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    code_id TEXT NOT NULL UNIQUE,
    facility_id TEXT NOT NULL,
    username TEXT NOT NULL,
    code TEXT NOT NULL,
    created_at TEXT NOT NULL,
    FOREIGN KEY (facility_id) REFERENCES facilities(facility_id) ON DELETE CASCADE
);`

	createVotes = `CREATE TABLE IF NOT EXISTS votes (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    vote_id TEXT NOT NULL UNIQUE,
    code_id TEXT NOT NULL,
    username TEXT NOT NULL,
    vote_type TEXT NOT NULL CHECK (vote_type IN ('up', 'down')),
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (code_id) REFERENCES codes(code_id) ON DELETE CASCADE
);`

	createNotes = `CREATE TABLE IF NOT EXISTS notes (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    facility_id TEXT NOT NULL,
    username TEXT NOT NULL,
    content TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (facility_id) REFERENCES facilities(facility_id) ON DELETE CASCADE
);`
)

// Index DDL. idx_votes_code_user backs the one-vote-per-user-per-code rule.
const (
	idxCommentsFacility  = `CREATE INDEX IF NOT EXISTS idx_comments_facility ON comments(facility_id);`
	idxCodesFacility     = `CREATE INDEX IF NOT EXISTS idx_codes_facility ON codes(facility_id);`
	idxVotesCodeUser     = `CREATE UNIQUE INDEX IF NOT EXISTS idx_votes_code_user ON votes(code_id, username);`
	idxNotesFacilityUser = `CREATE UNIQUE INDEX IF NOT EXISTS idx_notes_facility_user ON notes(facility_id, username);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createUsers,
	createFacilities,
	createComments,
	createCodes,
	createVotes,
	createNotes,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxCommentsFacility,
	idxCodesFacility,
	idxVotesCodeUser,
	idxNotesFacilityUser,
}
