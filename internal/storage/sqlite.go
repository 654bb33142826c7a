package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Tiliavir/reti/internal/log"
	"github.com/Tiliavir/reti/internal/model"
	"github.com/Tiliavir/reti/internal/store"

	_ "modernc.org/sqlite"
)

// SQLiteFile keeps the store in a SQLite database. Save rewrites all rows in
// one transaction, so a failed save leaves the previous snapshot intact.
type SQLiteFile struct {
	db  *sql.DB
	log *log.Logger
}

// OpenSQLite opens (creating if needed) the database at path and migrates it.
func OpenSQLite(path string, logger *log.Logger) (*SQLiteFile, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(path); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteFile{db: db, log: logger}, nil
}

func (f *SQLiteFile) Close() error {
	if f.db != nil {
		return f.db.Close()
	}
	return nil
}

// Load reads the whole snapshot. An empty database yields an empty store.
func (f *SQLiteFile) Load(ctx context.Context) (*store.Store, error) {
	s := store.New()

	err := f.db.QueryRowContext(ctx, `SELECT fee_per_hour FROM settings WHERE id = 1`).Scan(&s.FeePerHour)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	years := map[uint16]*model.Year{}
	rows, err := f.db.QueryContext(ctx, `SELECT year FROM years ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("read years: %w", err)
	}
	for rows.Next() {
		var y uint16
		if err := rows.Scan(&y); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan year: %w", err)
		}
		year := model.NewYear(y)
		years[y] = year
		s.Years = append(s.Years, year)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read years: %w", err)
	}

	type slot struct {
		year *model.Year
		i    int
	}
	days := map[int64]slot{}
	rows, err = f.db.QueryContext(ctx, `SELECT id, year, date, comment FROM days ORDER BY year, position`)
	if err != nil {
		return nil, fmt.Errorf("read days: %w", err)
	}
	for rows.Next() {
		var (
			id      int64
			y       uint16
			raw     string
			comment sql.NullString
		)
		if err := rows.Scan(&id, &y, &raw, &comment); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan day: %w", err)
		}
		date, err := model.ParseDate(raw)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan day %d: %w", id, err)
		}
		year, ok := years[y]
		if !ok {
			rows.Close()
			return nil, fmt.Errorf("day %s references unknown year %d", date, y)
		}
		day := model.NewDay(date)
		if comment.Valid {
			c := comment.String
			day.Comment = &c
		}
		year.Days = append(year.Days, day)
		days[id] = slot{year: year, i: len(year.Days) - 1}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read days: %w", err)
	}

	rows, err = f.db.QueryContext(ctx, `SELECT day_id, start, stop, factor FROM parts ORDER BY day_id, position`)
	if err != nil {
		return nil, fmt.Errorf("read parts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			dayID  int64
			start  int64
			stop   sql.NullInt64
			factor sql.NullFloat64
		)
		if err := rows.Scan(&dayID, &start, &stop, &factor); err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		sl, ok := days[dayID]
		if !ok {
			return nil, fmt.Errorf("part references unknown day %d", dayID)
		}
		part := model.OpenPart(model.Clock(start))
		if stop.Valid {
			c := model.Clock(stop.Int64)
			part.Stop = &c
		}
		if factor.Valid {
			part = part.WithFactor(factor.Float64)
		}
		d := &sl.year.Days[sl.i]
		d.Parts = append(d.Parts, part)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read parts: %w", err)
	}

	if err := s.Check(); err != nil {
		return nil, fmt.Errorf("database holds an invalid store: %w", err)
	}
	f.log.Debug("store loaded", "years", len(s.Years), "days", len(days))
	return s, nil
}

// Save replaces the stored snapshot with s.
func (f *SQLiteFile) Save(ctx context.Context, s *store.Store) (err error) {
	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, q := range []string{`DELETE FROM parts`, `DELETE FROM days`, `DELETE FROM years`} {
		if _, err = tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("clear tables: %w", err)
		}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO settings (id, fee_per_hour) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET fee_per_hour = excluded.fee_per_hour`, s.FeePerHour)
	if err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	insYear, err := tx.PrepareContext(ctx, `INSERT INTO years (year, position) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare years: %w", err)
	}
	defer insYear.Close()
	insDay, err := tx.PrepareContext(ctx, `INSERT INTO days (year, date, position, comment) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare days: %w", err)
	}
	defer insDay.Close()
	insPart, err := tx.PrepareContext(ctx, `INSERT INTO parts (day_id, position, start, stop, factor) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare parts: %w", err)
	}
	defer insPart.Close()

	for yi, y := range s.Years {
		if _, err = insYear.ExecContext(ctx, int64(y.Year), yi); err != nil {
			return fmt.Errorf("write year %d: %w", y.Year, err)
		}
		for di := range y.Days {
			d := &y.Days[di]
			var comment sql.NullString
			if d.Comment != nil {
				comment = sql.NullString{String: *d.Comment, Valid: true}
			}
			res, err := insDay.ExecContext(ctx, int64(y.Year), d.Date.String(), di, comment)
			if err != nil {
				return fmt.Errorf("write day %s: %w", d.Date, err)
			}
			dayID, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("write day %s: %w", d.Date, err)
			}
			for pi, p := range d.Parts {
				var (
					stop   sql.NullInt64
					factor sql.NullFloat64
				)
				if p.Stop != nil {
					stop = sql.NullInt64{Int64: int64(*p.Stop), Valid: true}
				}
				if p.Factor != nil {
					factor = sql.NullFloat64{Float64: *p.Factor, Valid: true}
				}
				if _, err := insPart.ExecContext(ctx, dayID, pi, int64(p.Start), stop, factor); err != nil {
					return fmt.Errorf("write part %s of %s: %w", p, d.Date, err)
				}
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	f.log.Debug("store saved", "years", len(s.Years))
	return nil
}
