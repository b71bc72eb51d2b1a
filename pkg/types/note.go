package types

// Note is a single row of a zone's note table.
//
// Timestamp is always expressed in the canonical layout "2006-01-02 15:04:05".
// Values handed out by a store are in local time; the store keeps UTC.
type Note struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
}

// ColumnMapping names a column that was renamed between two schema versions.
// Migration copies data from Old into New when Old exists in the previous
// table and New exists in the current one.
type ColumnMapping struct {
	Old string
	New string
}
