// Package persistence provides SQLite-based run state storage and
// compressed snapshot files.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/notarikon-nz/subversive-sub001/internal/engine"
)

// DB wraps a SQLite connection for run state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS guards (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		health REAL NOT NULL,
		morale REAL NOT NULL,
		alive INTEGER NOT NULL,
		weapon TEXT NOT NULL,
		ammo INTEGER NOT NULL,
		goal TEXT NOT NULL,
		plan_len INTEGER NOT NULL,
		world_state_json TEXT NOT NULL,
		profile_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS intruders (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		health REAL NOT NULL,
		alive INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_guards_alive ON guards(alive);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveGuards writes guard rows to the database (full replace).
func (db *DB) SaveGuards(guards []GuardV1) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM guards"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO guards
		(id, name, x, y, health, morale, alive, weapon, ammo,
		 goal, plan_len, world_state_json, profile_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, g := range guards {
		stateJSON, _ := json.Marshal(g.Beliefs)
		profileJSON, _ := json.Marshal(g.Profile)

		alive := 0
		if g.Alive {
			alive = 1
		}

		_, err := stmt.Exec(
			g.ID, g.Name, g.Pos.X, g.Pos.Y, g.Health, g.Morale,
			alive, g.Weapon, g.Ammo,
			g.Goal, g.PlanLen,
			string(stateJSON), string(profileJSON),
		)
		if err != nil {
			return fmt.Errorf("insert guard %d: %w", g.ID, err)
		}
	}

	return tx.Commit()
}

// SaveIntruders writes intruder rows to the database (full replace).
func (db *DB) SaveIntruders(intruders []IntruderV1) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM intruders"); err != nil {
		return err
	}

	for _, in := range intruders {
		alive := 0
		if in.Alive {
			alive = 1
		}
		_, err := tx.Exec(`INSERT INTO intruders (id, name, x, y, health, alive)
			VALUES (?, ?, ?, ?, ?, ?)`,
			in.ID, in.Name, in.Pos.X, in.Pos.Y, in.Health, alive,
		)
		if err != nil {
			return fmt.Errorf("insert intruder %d: %w", in.ID, err)
		}
	}

	return tx.Commit()
}

// SaveEvents appends events to the database.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (tick, description, category) VALUES (?, ?, ?)",
			e.Tick, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveMeta stores a key-value pair in run metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO run_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM run_meta WHERE key = ?", key)
	return value, err
}

// RunID returns the stable identifier for this database's run, minting
// one on first call.
func (db *DB) RunID() (string, error) {
	if id, err := db.GetMeta("run_id"); err == nil {
		return id, nil
	}
	id := uuid.NewString()
	if err := db.SaveMeta("run_id", id); err != nil {
		return "", err
	}
	return id, nil
}

// SaveRunState performs a full save of the simulation. Rows are copied
// under the simulation read lock; the SQL writes happen after, so the
// tick loop is never stalled on disk.
func (db *DB) SaveRunState(sim *engine.Simulation) error {
	var (
		guards    []GuardV1
		intruders []IntruderV1
		events    []engine.Event
		tick      uint64
	)
	sim.ReadScope(func() {
		for _, g := range sim.Guards {
			guards = append(guards, guardRow(g))
		}
		for _, in := range sim.Intruders {
			intruders = append(intruders, intruderRow(in))
		}
		events = append(events, sim.Events...)
		tick = sim.LastTick
	})

	slog.Info("saving run state", "guards", len(guards), "intruders", len(intruders))

	if err := db.SaveGuards(guards); err != nil {
		return fmt.Errorf("save guards: %w", err)
	}
	if err := db.SaveIntruders(intruders); err != nil {
		return fmt.Errorf("save intruders: %w", err)
	}
	if err := db.SaveEvents(events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveMeta("last_tick", fmt.Sprintf("%d", tick)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("run state saved")
	return nil
}

// RecentEvents returns the most recent N events.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT tick, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}
