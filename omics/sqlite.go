package omics

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go-ml.dev/pkg/zorros"
)

/*
sqlSource reads target tables from a SQLite database. Each table has
the same layout as its tab-separated counterpart: the first column
indexes samples, the remaining columns carry the targets.
*/
type sqlSource struct {
	path string
	db   *sql.DB
}

func openSQLSource(path string) (targetSource, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, zorros.Wrapf(err, "failed to open target database `%v`: %v", path, err.Error())
	}
	return &sqlSource{path: path, db: db}, nil
}

func (s *sqlSource) table(name string) (map[string][]string, error) {
	var exists int
	err := s.db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&exists)
	if err != nil {
		return nil, zorros.Wrapf(err, "failed to query target database `%v`: %v", s.path, err.Error())
	}
	if exists == 0 {
		return nil, &MissingTargetFileError{Path: s.path + "#" + name}
	}
	rows, err := s.db.Query(fmt.Sprintf("SELECT * FROM %q", name))
	if err != nil {
		return nil, zorros.Wrapf(err, "failed to read target table `%v`: %v", name, err.Error())
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, zorros.Trace(err)
	}
	if len(cols) < 2 {
		return nil, zorros.Errorf("target table `%v` needs a sample column and at least one target column", name)
	}
	r := map[string][]string{}
	for rows.Next() {
		cells := make([]sql.NullString, len(cols))
		scan := make([]interface{}, len(cols))
		for i := range cells {
			scan[i] = &cells[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, zorros.Wrapf(err, "failed to scan target table `%v`: %v", name, err.Error())
		}
		values := make([]string, len(cols)-1)
		for i, c := range cells[1:] {
			values[i] = c.String
		}
		r[cells[0].String] = values
	}
	if err := rows.Err(); err != nil {
		return nil, zorros.Trace(err)
	}
	return r, nil
}

func (s *sqlSource) Close() error {
	return s.db.Close()
}
