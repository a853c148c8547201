package db

// NotDeleted is the shared soft-delete predicate. Every table that can be
// soft-deleted carries an is_deleted column; pass the table alias used in
// the query, or "" for an unqualified column.
func NotDeleted(alias string) string {
	if alias == "" {
		return "is_deleted = FALSE"
	}
	return alias + ".is_deleted = FALSE"
}
