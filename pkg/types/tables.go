package types

// Table names, used for Counts, Export and Import.
const (
	UsersTable      = "users"
	FacilitiesTable = "facilities"
	CommentsTable   = "comments"
	CodesTable      = "codes"
	VotesTable      = "votes"
	NotesTable      = "notes"
)

// StandardTableNames lists all tables in dependency order.
var StandardTableNames = []string{
	UsersTable,
	FacilitiesTable,
	CommentsTable,
	CodesTable,
	VotesTable,
	NotesTable,
}
