package location

import (
	"context"

	"backend-presence/internal/db"

	"github.com/google/uuid"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) CreateLocation(ctx context.Context, input Location) (Location, error) {
	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO locations (id, name, center, radius_m, active)
		VALUES ($1,$2, ST_SetSRID(ST_MakePoint($3,$4), 4326)::geography, $5, $6)
		RETURNING created_at
	`, input.ID, input.Name, input.Lng, input.Lat, input.RadiusM, input.Active)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Location{}, err
	}
	return input, nil
}

func (s *Service) UpdateLocation(ctx context.Context, id string, patch LocationUpdate) (Location, error) {
	loc, err := s.GetLocation(ctx, id)
	if err != nil {
		return Location{}, err
	}
	if patch.Name != "" {
		loc.Name = patch.Name
	}
	if patch.Lat != 0 {
		loc.Lat = patch.Lat
	}
	if patch.Lng != 0 {
		loc.Lng = patch.Lng
	}
	if patch.RadiusM != 0 {
		loc.RadiusM = patch.RadiusM
	}
	if patch.Active != nil {
		loc.Active = *patch.Active
	}

	_, err = s.db.Exec(ctx, `
		UPDATE locations
		SET name=$2,
		    center=ST_SetSRID(ST_MakePoint($3,$4), 4326)::geography,
		    radius_m=$5, active=$6
		WHERE id=$1
	`, loc.ID, loc.Name, loc.Lng, loc.Lat, loc.RadiusM, loc.Active)
	if err != nil {
		return Location{}, err
	}
	return loc, nil
}

func (s *Service) GetLocation(ctx context.Context, id string) (Location, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, ST_Y(center::geometry), ST_X(center::geometry), radius_m, active, created_at
		FROM locations WHERE id=$1
	`, id)
	var loc Location
	if err := row.Scan(&loc.ID, &loc.Name, &loc.Lat, &loc.Lng, &loc.RadiusM, &loc.Active, &loc.CreatedAt); err != nil {
		return Location{}, err
	}
	return loc, nil
}

func (s *Service) ListLocations(ctx context.Context, activeOnly bool) ([]Location, error) {
	query := `
		SELECT id, name, ST_Y(center::geometry), ST_X(center::geometry), radius_m, active, created_at
		FROM locations
		ORDER BY created_at
	`
	if activeOnly {
		query = `
		SELECT id, name, ST_Y(center::geometry), ST_X(center::geometry), radius_m, active, created_at
		FROM locations WHERE active
		ORDER BY created_at
	`
	}

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []Location
	for rows.Next() {
		var loc Location
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Lat, &loc.Lng, &loc.RadiusM, &loc.Active, &loc.CreatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, nil
}

func (s *Service) DeleteLocation(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM locations WHERE id=$1`, id)
	return err
}
