package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const activeProjectKey = "active_project"

// SessionState keeps the serialized record of the active project under a
// single key. It satisfies project.StateStore.
type SessionState struct {
	db  *sql.DB
	key string
}

func (s *Store) SessionState() *SessionState {
	return &SessionState{db: s.db, key: activeProjectKey}
}

// Get returns nil when nothing is stored.
func (st *SessionState) Get() ([]byte, error) {
	var data string
	err := st.db.QueryRow(`SELECT data FROM session_state WHERE key = ?`, st.key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session state: %w", err)
	}
	return []byte(data), nil
}

func (st *SessionState) Set(data []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := st.db.Exec(
		`INSERT INTO session_state (key, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		st.key, string(data), now,
	)
	if err != nil {
		return fmt.Errorf("set session state: %w", err)
	}
	return nil
}

func (st *SessionState) Delete() error {
	if _, err := st.db.Exec(`DELETE FROM session_state WHERE key = ?`, st.key); err != nil {
		return fmt.Errorf("delete session state: %w", err)
	}
	return nil
}
