package sqlite

import "github.com/mesh-intelligence/restroom/pkg/types"

// tableFile describes how one table maps onto a JSONL backup file. Order in
// jsonlTables matters: tables with foreign keys load after their parents.
type tableFile struct {
	table   string
	columns []string
	// timeColumns are normalized to the fixed-width stored layout on import.
	timeColumns []string
}

func (t tableFile) file() string {
	return t.table + ".jsonl"
}

var jsonlTables = []tableFile{
	{
		table:       types.UsersTable,
		columns:     []string{"username", "password_hash", "created_at"},
		timeColumns: []string{"created_at"},
	},
	{
		table:       types.FacilitiesTable,
		columns:     []string{"facility_id", "place_id", "name", "latitude", "longitude", "address", "rating", "created_at"},
		timeColumns: []string{"created_at"},
	},
	{
		table:       types.CommentsTable,
		columns:     []string{"comment_id", "facility_id", "username", "content", "created_at"},
		timeColumns: []string{"created_at"},
	},
	{
		table:       types.CodesTable,
		columns:     []string{"code_id", "facility_id", "username", "code", "created_at"},
		timeColumns: []string{"created_at"},
	},
	{
		table:       types.VotesTable,
		columns:     []string{"vote_id", "code_id", "username", "vote_type", "created_at", "updated_at"},
		timeColumns: []string{"created_at", "updated_at"},
	},
	{
		table:       types.NotesTable,
		columns:     []string{"facility_id", "username", "content", "updated_at"},
		timeColumns: []string{"updated_at"},
	},
}
