package sqlxrepos

import (
	"strings"

	"github.com/trezcool/simulado/core"
)

// getExec returns the caller's executor (usually a transaction) or the repository's default one.
func getExec(repoExec core.DBExecutor, svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repoExec
}

// where joins SQL conditions with AND.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// orderBy renders ordering, keeping only the fields listed in columns.
func orderBy(ordering []core.DBOrdering, columns map[string]string, fallback string) string {
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if col, ok := columns[ord.Field]; ok {
			orderList = append(orderList, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
		}
	}
	if len(orderList) == 0 {
		return " ORDER BY " + fallback
	}
	return " ORDER BY " + strings.Join(orderList, ", ")
}

// likePattern returns a case-insensitive LIKE operand for s.
func likePattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}
