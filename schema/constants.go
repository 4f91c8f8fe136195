package schema

// DatabaseBackend represents the database backend for run history.
type DatabaseBackend string

// All run history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// ValidDatabaseBackends lists all valid run history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// FindRenamesAndCopiesFlag is the only argument accepted by the hoc command.
const FindRenamesAndCopiesFlag = "--find-renames-and-copies"

// OutputMode represents how run history is rendered.
type OutputMode string

// All output modes supported by the runs list command.
const (
	TableOut OutputMode = "table" // default
	JSONOut  OutputMode = "json"
	CSVOut   OutputMode = "csv"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TableOut: {},
	JSONOut:  {},
	CSVOut:   {},
}
