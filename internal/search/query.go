package search

// Query accumulates SQL conditions contributed by push-down specifications.
// The ride repository joins Where with AND and appends Args in order, the
// same way the hand-built WHERE lists elsewhere in the repository layer
// work. Location predicates contribute nothing here; they run in memory on
// the fetched rows because geographic distance cannot be pushed into the
// database without a spatial index.
type Query struct {
	Where []string
	Args  []any
}

// Add appends one condition with its arguments.
func (q *Query) Add(cond string, args ...any) {
	q.Where = append(q.Where, cond)
	q.Args = append(q.Args, args...)
}
