package state

import "fmt"

var (
	DBG_assert     = true
	DBG_log_flood  = false
	DBG_log_hello  = false
	DBG_log_routes = false
)

// Assert panics with the formatted message when cond is false and assertions are enabled.
func Assert(cond bool, format string, args ...any) {
	if cond || !DBG_assert {
		return
	}
	panic(fmt.Sprintf("invariant violated: "+format, args...))
}
