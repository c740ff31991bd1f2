package project

import (
	"encoding/json"
	"fmt"
)

// Marshal serializes a session into its persisted JSON record.
func Marshal(s Session) ([]byte, error) {
	if s.Results == nil {
		s.Results = []ProjectTaskResult{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return data, nil
}

// Unmarshal parses a persisted record. Anything that doesn't decode into a
// structurally valid session is an error; callers treat it as no session.
func Unmarshal(data []byte) (Session, error) {
	if len(data) == 0 {
		return Session{}, ErrNoSavedProject
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	if s.Results == nil {
		s.Results = []ProjectTaskResult{}
	}
	if err := s.validate(); err != nil {
		return Session{}, fmt.Errorf("invalid session: %w", err)
	}
	return s, nil
}
