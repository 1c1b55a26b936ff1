package natives

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/ochre-lang/ochre/internal/value"
)

// dbHandles is the opaque-integer-Value handle table backing dbOpen et al,
// grounded on the teacher's internal/database.DatabaseModule.Connections
// map — a connection ID to *sql.DB registry, here keyed by a counter
// instead of a caller-supplied ID string. Handles are plain Numbers, not a
// ninth heap-object kind: spec §3.2 fixes the object kinds at eight, and a
// native's own bookkeeping table is exactly how the teacher's module-level
// connection registries already work.
type dbHandles struct {
	mu   sync.Mutex
	next int
	open map[int]*sql.DB
}

func installDB(h Host) {
	reg := &dbHandles{open: make(map[int]*sql.DB)}

	h.Define("dbOpen", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return value.Nil, argError("dbOpen", 2, len(args))
		}
		driver, err := wantString("dbOpen", 1, args[0])
		if err != nil {
			return value.Nil, err
		}
		dsn, err := wantString("dbOpen", 2, args[1])
		if err != nil {
			return value.Nil, err
		}
		db, err := sql.Open(driver.Chars, dsn.Chars)
		if err != nil {
			return value.Nil, fmt.Errorf("dbOpen: %w", err)
		}
		reg.mu.Lock()
		handle := reg.next
		reg.next++
		reg.open[handle] = db
		reg.mu.Unlock()
		return value.Number(float64(handle)), nil
	})

	h.Define("dbQuery", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return value.Nil, argError("dbQuery", 2, len(args))
		}
		db, err := reg.lookup("dbQuery", args[0])
		if err != nil {
			return value.Nil, err
		}
		query, err := wantString("dbQuery", 2, args[1])
		if err != nil {
			return value.Nil, err
		}
		rows, err := db.Query(query.Chars)
		if err != nil {
			return value.Nil, fmt.Errorf("dbQuery: %w", err)
		}
		defer rows.Close()
		text, err := formatRows(rows)
		if err != nil {
			return value.Nil, fmt.Errorf("dbQuery: %w", err)
		}
		return value.FromObj(h.Heap().InternString(text)), nil
	})

	h.Define("dbExec", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return value.Nil, argError("dbExec", 2, len(args))
		}
		db, err := reg.lookup("dbExec", args[0])
		if err != nil {
			return value.Nil, err
		}
		stmt, err := wantString("dbExec", 2, args[1])
		if err != nil {
			return value.Nil, err
		}
		result, err := db.Exec(stmt.Chars)
		if err != nil {
			return value.Nil, fmt.Errorf("dbExec: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return value.Nil, fmt.Errorf("dbExec: %w", err)
		}
		return value.Number(float64(n)), nil
	})

	h.Define("dbClose", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Nil, argError("dbClose", 1, len(args))
		}
		db, err := reg.lookup("dbClose", args[0])
		if err != nil {
			return value.Nil, err
		}
		handle := int(args[0].AsNumber())
		reg.mu.Lock()
		delete(reg.open, handle)
		reg.mu.Unlock()
		if err := db.Close(); err != nil {
			return value.Nil, fmt.Errorf("dbClose: %w", err)
		}
		return value.Nil, nil
	})
}

func (r *dbHandles) lookup(fn string, v value.Value) (*sql.DB, error) {
	n, err := wantNumber(fn, 1, v)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	db, ok := r.open[int(n)]
	if !ok {
		return nil, fmt.Errorf("%s: no open connection for handle %v", fn, n)
	}
	return db, nil
}

// formatRows renders a result set as "col=val,col=val;col=val,..." — the
// language has no list/map value kind (spec §3.2's fixed eight), so a
// textual form is the only representation a script can consume without a
// new opcode or heap-object kind.
func formatRows(rows *sql.Rows) (string, error) {
	cols, err := rows.Columns()
	if err != nil {
		return "", err
	}
	var lines []string
	for rows.Next() {
		dest := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range dest {
			ptrs[i] = &dest[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return "", err
		}
		fields := make([]string, len(cols))
		for i, c := range cols {
			fields[i] = fmt.Sprintf("%s=%v", c, dest[i])
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	return strings.Join(lines, ";"), rows.Err()
}
