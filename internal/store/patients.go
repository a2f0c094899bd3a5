package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// #region patient
// Patient is a stored patient record.
type Patient struct {
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	IDNumber  string   `json:"id_number"`
	History   []string `json:"history"`
	Scans     []string `json:"scans"`
}

// PatientsDocument is the JSON import format: {"patients": [...]}.
type PatientsDocument struct {
	Patients []Patient `json:"patients"`
}

// #endregion patient

// #region get
// GetPatient returns the record stored under idNumber.
func (s *Store) GetPatient(ctx context.Context, idNumber string) (Patient, error) {
	var p Patient
	var historyJSON, scansJSON string
	err := s.db.QueryRowContext(ctx, s.Rebind(
		`SELECT id_number, first_name, last_name, history_json, scans_json
		 FROM patients WHERE id_number = ?`), strings.TrimSpace(idNumber),
	).Scan(&p.IDNumber, &p.FirstName, &p.LastName, &historyJSON, &scansJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return Patient{}, fmt.Errorf("get patient %s: %w", idNumber, ErrNotFound)
	}
	if err != nil {
		return Patient{}, fmt.Errorf("get patient %s: %w", idNumber, err)
	}
	if err := json.Unmarshal([]byte(historyJSON), &p.History); err != nil {
		return Patient{}, fmt.Errorf("unmarshal history: %w", err)
	}
	if err := json.Unmarshal([]byte(scansJSON), &p.Scans); err != nil {
		return Patient{}, fmt.Errorf("unmarshal scans: %w", err)
	}
	return p, nil
}

// #endregion get

// #region lookup
// Lookup matches a claimed identity against stored records: the trimmed ID
// must match exactly and names match case-insensitively. A mismatch is
// reported as found=false, not as an error.
func (s *Store) Lookup(ctx context.Context, firstName, lastName, idNumber string) ([]string, []string, bool, error) {
	p, err := s.GetPatient(ctx, idNumber)
	if errors.Is(err, ErrNotFound) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, err
	}
	if !sameName(p.FirstName, firstName) || !sameName(p.LastName, lastName) {
		return nil, nil, false, nil
	}
	return p.History, p.Scans, true, nil
}

func sameName(stored, claimed string) bool {
	return strings.EqualFold(strings.TrimSpace(stored), strings.TrimSpace(claimed))
}

// #endregion lookup

// #region upsert
// UpsertPatient inserts or replaces the record keyed by its ID number.
func (s *Store) UpsertPatient(ctx context.Context, p Patient) error {
	return upsert(ctx, s.db, s.Rebind, p)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, db execer, rebind func(string) string, p Patient) error {
	id := strings.TrimSpace(p.IDNumber)
	if id == "" {
		return errors.New("upsert patient: empty id_number")
	}
	historyJSON, err := json.Marshal(nonNil(p.History))
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	scansJSON, err := json.Marshal(nonNil(p.Scans))
	if err != nil {
		return fmt.Errorf("marshal scans: %w", err)
	}

	_, err = db.ExecContext(ctx, rebind(
		`INSERT INTO patients (id_number, first_name, last_name, history_json, scans_json, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id_number) DO UPDATE SET
		   first_name = excluded.first_name,
		   last_name = excluded.last_name,
		   history_json = excluded.history_json,
		   scans_json = excluded.scans_json,
		   updated_at = excluded.updated_at`),
		id, strings.TrimSpace(p.FirstName), strings.TrimSpace(p.LastName),
		string(historyJSON), string(scansJSON), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert patient %s: %w", id, err)
	}
	return nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// #endregion upsert

// #region import
// ImportPatients reads a PatientsDocument and upserts every record in one
// transaction. It returns the number of records written.
func (s *Store) ImportPatients(ctx context.Context, r io.Reader) (int, error) {
	var doc PatientsDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return 0, fmt.Errorf("decode patients: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, p := range doc.Patients {
		if err := upsert(ctx, tx, s.Rebind, p); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(doc.Patients), nil
}

// #endregion import
