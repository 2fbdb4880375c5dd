package seed

import (
	"context"
	"fmt"

	"github.com/yigit/fneseed/internal/config"
	"github.com/yigit/fneseed/internal/store"
)

// creationOrder is CleanupOrder reversed
func creationOrder() []string {
	out := make([]string, len(CleanupOrder))
	for i, t := range CleanupOrder {
		out[len(CleanupOrder)-1-i] = t
	}
	return out
}

// Validate counts the tagged rows of every table and compares them with what
// the run produced, then checks the headline volumes. Every mismatch becomes
// a warning; none of them fails the run.
func Validate(ctx context.Context, s store.Store, tag string, vol config.Volumes, res Results) ([]TableCheck, []string) {
	expected := res.Expected()
	filter := store.Tagged(tag)

	var (
		checks   []TableCheck
		warnings []string
	)
	for _, table := range creationOrder() {
		want, ok := expected[table]
		if !ok {
			continue
		}
		rows, err := s.Select(ctx, table, filter, "id")
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("could not count %s: %v", table, err))
			continue
		}
		checks = append(checks, TableCheck{Table: table, Expected: want, Actual: len(rows)})
		if len(rows) != want {
			warnings = append(warnings, fmt.Sprintf("%s holds %d tagged rows, expected %d", table, len(rows), want))
		}
	}

	if res.Org != nil {
		if got := len(res.Org.Schools); got != vol.Schools {
			warnings = append(warnings, fmt.Sprintf("generated %d schools, configured %d", got, vol.Schools))
		}
		if got := len(res.Org.Communities); got != vol.Communities() {
			warnings = append(warnings, fmt.Sprintf("generated %d communities, expected %d", got, vol.Communities()))
		}
	}
	if res.Users != nil {
		if got := len(res.Users.Users); got != vol.Users {
			warnings = append(warnings, fmt.Sprintf("generated %d users, configured %d", got, vol.Users))
		}
		if res.Org != nil && len(res.Users.Leaders) != len(res.Org.Communities) {
			warnings = append(warnings, fmt.Sprintf("%d of %d communities have a leader", len(res.Users.Leaders), len(res.Org.Communities)))
		}
	}
	return checks, warnings
}
