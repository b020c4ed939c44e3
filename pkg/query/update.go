package query

import (
	"fmt"
	"strings"
)

// UpdateBuilder constructs an UPDATE ... RETURNING statement that assigns only
// the fields explicitly set on it.
type UpdateBuilder struct {
	projection  *ProjectionMap
	assignments []condition
	conditions  []condition
}

// NewUpdate creates an UpdateBuilder targeting the projection's table.
func NewUpdate(projection *ProjectionMap) *UpdateBuilder {
	return &UpdateBuilder{projection: projection}
}

// Set assigns value to field unconditionally.
func (u *UpdateBuilder) Set(field string, value any) *UpdateBuilder {
	u.assignments = append(u.assignments, condition{
		clause: fmt.Sprintf("%s = $%%d", u.projection.Name(field)),
		args:   []any{value},
	})
	return u
}

// SetPresent assigns the pointed-to value when value is non-nil and skips the field otherwise.
func SetPresent[T any](u *UpdateBuilder, field string, value *T) *UpdateBuilder {
	if value == nil {
		return u
	}
	return u.Set(field, *value)
}

// Where adds an equality condition on field.
func (u *UpdateBuilder) Where(field string, value any) *UpdateBuilder {
	u.conditions = append(u.conditions, condition{
		clause: fmt.Sprintf("%s = $%%d", u.projection.Column(field)),
		args:   []any{value},
	})
	return u
}

// Empty reports whether no assignments have been made.
func (u *UpdateBuilder) Empty() bool {
	return len(u.assignments) == 0
}

// Build returns the UPDATE statement returning every projected column.
func (u *UpdateBuilder) Build() (string, []any) {
	set, setArgs, next := buildList(u.assignments, 1)
	where, whereArgs, _ := buildWhere(u.conditions, next)

	sql := fmt.Sprintf(
		"UPDATE %s SET %s%s RETURNING %s",
		u.projection.Table(),
		set,
		where,
		u.projection.Columns(),
	)

	return sql, append(setArgs, whereArgs...)
}

func buildList(items []condition, startParam int) (string, []any, int) {
	parts := make([]string, 0, len(items))
	args := make([]any, 0, len(items))
	paramIdx := startParam

	for _, item := range items {
		clause := item.clause
		for _, arg := range item.args {
			clause = strings.Replace(clause, "$%d", fmt.Sprintf("$%d", paramIdx), 1)
			args = append(args, arg)
			paramIdx++
		}
		parts = append(parts, clause)
	}

	return strings.Join(parts, ", "), args, paramIdx
}
