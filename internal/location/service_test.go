package location

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
)

func TestCreateGetListLocation(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	svc := NewService(mock)

	createdAt := time.Now()
	mock.ExpectQuery(`INSERT INTO locations`).
		WithArgs(pgxmock.AnyArg(), "Home", 135.5023, 34.6937, 100.0, true).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	loc, err := svc.CreateLocation(context.Background(), Location{Name: "Home", Lat: 34.6937, Lng: 135.5023, RadiusM: 100, Active: true})
	if err != nil {
		t.Fatalf("create location: %v", err)
	}
	if loc.ID == "" {
		t.Fatalf("expected location id")
	}

	mock.ExpectQuery(`SELECT id, name, ST_Y\(center::geometry\), ST_X\(center::geometry\), radius_m, active, created_at`).
		WithArgs(loc.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "lat", "lng", "radius_m", "active", "created_at"}).
			AddRow(loc.ID, "Home", 34.6937, 135.5023, 100.0, true, createdAt))

	got, err := svc.GetLocation(context.Background(), loc.ID)
	if err != nil {
		t.Fatalf("get location: %v", err)
	}
	if got.Name != "Home" || !got.Active {
		t.Fatalf("unexpected location: %+v", got)
	}

	mock.ExpectQuery(`SELECT id, name, ST_Y\(center::geometry\), ST_X\(center::geometry\), radius_m, active, created_at`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "lat", "lng", "radius_m", "active", "created_at"}).
			AddRow(loc.ID, "Home", 34.6937, 135.5023, 100.0, true, createdAt))

	locations, err := svc.ListLocations(context.Background(), true)
	if err != nil || len(locations) != 1 {
		t.Fatalf("list locations: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateLocationPatchesFields(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	createdAt := time.Now()
	mock.ExpectQuery(`SELECT id, name, ST_Y\(center::geometry\), ST_X\(center::geometry\), radius_m, active, created_at`).
		WithArgs("loc-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "lat", "lng", "radius_m", "active", "created_at"}).
			AddRow("loc-1", "Home", 34.6937, 135.5023, 100.0, true, createdAt))

	mock.ExpectExec(`UPDATE locations`).
		WithArgs("loc-1", "Office", 135.5023, 34.6937, 150.0, false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	svc := NewService(mock)
	inactive := false
	loc, err := svc.UpdateLocation(context.Background(), "loc-1", LocationUpdate{Name: "Office", RadiusM: 150, Active: &inactive})
	if err != nil {
		t.Fatalf("update location: %v", err)
	}
	if loc.Name != "Office" || loc.RadiusM != 150 || loc.Active {
		t.Fatalf("unexpected patched location: %+v", loc)
	}
}

func TestUpdateLocationKeepsActiveWhenOmitted(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	createdAt := time.Now()
	mock.ExpectQuery(`SELECT id, name, ST_Y\(center::geometry\), ST_X\(center::geometry\), radius_m, active, created_at`).
		WithArgs("loc-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "lat", "lng", "radius_m", "active", "created_at"}).
			AddRow("loc-1", "Home", 34.6937, 135.5023, 100.0, true, createdAt))

	mock.ExpectExec(`UPDATE locations`).
		WithArgs("loc-1", "Office", 135.5023, 34.6937, 100.0, true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	svc := NewService(mock)
	loc, err := svc.UpdateLocation(context.Background(), "loc-1", LocationUpdate{Name: "Office"})
	if err != nil {
		t.Fatalf("update location: %v", err)
	}
	if !loc.Active {
		t.Fatalf("rename must not deactivate the location: %+v", loc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteLocation(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM locations`).
		WithArgs("loc-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	svc := NewService(mock)
	if err := svc.DeleteLocation(context.Background(), "loc-1"); err != nil {
		t.Fatalf("delete location: %v", err)
	}
}

func TestCreateLocationError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO locations`).
		WillReturnError(errLocation)

	svc := NewService(mock)
	_, err = svc.CreateLocation(context.Background(), Location{Name: "Home", RadiusM: 100})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestListLocationsQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, name`).
		WillReturnError(errLocation)

	svc := NewService(mock)
	_, err = svc.ListLocations(context.Background(), false)
	if err == nil {
		t.Fatalf("expected error")
	}
}

var errLocation = errors.New("location error")
