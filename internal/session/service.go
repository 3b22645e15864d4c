package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend-presence/internal/db"
	"backend-presence/internal/location"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// ActiveLocations returns the monitored locations flagged active.
func (s *Service) ActiveLocations(ctx context.Context) ([]location.Location, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, ST_Y(center::geometry), ST_X(center::geometry), radius_m, active, created_at
		FROM locations WHERE active
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []location.Location
	for rows.Next() {
		var loc location.Location
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Lat, &loc.Lng, &loc.RadiusM, &loc.Active, &loc.CreatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, nil
}

// ActiveSession returns the open session, or nil when none is open.
func (s *Service) ActiveSession(ctx context.Context) (*Session, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, location_id, started_at, ended_at
		FROM presence_sessions WHERE ended_at IS NULL
		LIMIT 1
	`)
	var sess Session
	if err := row.Scan(&sess.ID, &sess.LocationID, &sess.StartedAt, &sess.EndedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &sess, nil
}

func (s *Service) StartSession(ctx context.Context, locationID string, at time.Time) (Session, error) {
	if at.IsZero() {
		at = time.Now()
	}
	sess := Session{ID: uuid.NewString(), LocationID: locationID, StartedAt: at}

	row := s.db.QueryRow(ctx, `
		INSERT INTO presence_sessions (id, location_id, started_at)
		VALUES ($1,$2,$3)
		RETURNING started_at
	`, sess.ID, sess.LocationID, sess.StartedAt)
	if err := row.Scan(&sess.StartedAt); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *Service) EndSession(ctx context.Context, id string, at time.Time) error {
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.Exec(ctx, `
		UPDATE presence_sessions SET ended_at=$2
		WHERE id=$1 AND ended_at IS NULL
	`, id, at)
	return err
}

// AddSamples persists a batch of samples with a single multi-row insert.
func (s *Service) AddSamples(ctx context.Context, samples []Sample) error {
	if len(samples) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO presence_samples (session_id, location, recorded_at, accuracy_m, altitude_m, vertical_accuracy_m, speed_mps, course_deg) VALUES `)
	args := make([]any, 0, len(samples)*9)
	for i, smp := range samples {
		if i > 0 {
			sb.WriteString(",")
		}
		base := i * 9
		fmt.Fprintf(&sb, "($%d, ST_SetSRID(ST_MakePoint($%d,$%d), 4326)::geography, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9)
		args = append(args, smp.SessionID, smp.Lng, smp.Lat, smp.RecordedAt, smp.AccuracyM, smp.AltitudeM, smp.VerticalAccuracyM, smp.SpeedMps, smp.CourseDeg)
	}

	_, err := s.db.Exec(ctx, sb.String(), args...)
	return err
}

// PruneSamples deletes samples recorded before the cutoff and reports how many went.
func (s *Service) PruneSamples(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM presence_samples WHERE recorded_at < $1`, olderThan)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Service) Sessions(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, location_id, started_at, ended_at
		FROM presence_sessions
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.LocationID, &sess.StartedAt, &sess.EndedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

func (s *Service) Samples(ctx context.Context, sessionID string) ([]Sample, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, session_id, ST_Y(location::geometry), ST_X(location::geometry), recorded_at,
		       accuracy_m, altitude_m, vertical_accuracy_m, speed_mps, course_deg, created_at
		FROM presence_samples WHERE session_id=$1
		ORDER BY recorded_at
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var smp Sample
		if err := rows.Scan(&smp.ID, &smp.SessionID, &smp.Lat, &smp.Lng, &smp.RecordedAt,
			&smp.AccuracyM, &smp.AltitudeM, &smp.VerticalAccuracyM, &smp.SpeedMps, &smp.CourseDeg, &smp.CreatedAt); err != nil {
			return nil, err
		}
		samples = append(samples, smp)
	}
	return samples, nil
}
