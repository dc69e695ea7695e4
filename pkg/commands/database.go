package commands

import (
	"fmt"

	"errday/pkg/database"
	"errday/pkg/utils"
)

// Purge scopes
const (
	PurgeDone = "done"
	PurgeAll  = "all"
)

// Purge deletes every done task, or every task, and reports how many went
func Purge(store *database.Store, scope string) (int, error) {
	var match func(database.Task) bool
	switch scope {
	case PurgeDone:
		match = database.Task.IsDone
	case PurgeAll:
		match = func(database.Task) bool { return true }
	default:
		return 0, fmt.Errorf("unknown purge scope %q (want %s or %s)", scope, PurgeDone, PurgeAll)
	}

	n := store.DeleteWhere(match)
	utils.Log("Purged %d task(s) with scope %s", n, scope)
	return n, nil
}
