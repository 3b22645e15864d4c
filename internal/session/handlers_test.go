package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func TestSessionHandlers(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	startedAt := time.Now()
	mock.ExpectQuery(`SELECT id, location_id, started_at, ended_at`).
		WithArgs(50).
		WillReturnRows(pgxmock.NewRows([]string{"id", "location_id", "started_at", "ended_at"}).
			AddRow("sess-1", "loc-1", startedAt, nil))

	app := fiber.New()
	RegisterRoutes(app.Group("/sessions"), NewService(mock))

	req := httptest.NewRequest(http.MethodGet, "/sessions/", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("list sessions status: %v", err)
	}

	mock.ExpectQuery(`SELECT id, session_id, ST_Y\(location::geometry\), ST_X\(location::geometry\), recorded_at,`).
		WithArgs("sess-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "session_id", "lat", "lng", "recorded_at", "accuracy_m", "altitude_m", "vertical_accuracy_m", "speed_mps", "course_deg", "created_at"}).
			AddRow(int64(1), "sess-1", 34.6937, 135.5023, startedAt, 5.0, 12.0, nil, nil, nil, startedAt))

	req = httptest.NewRequest(http.MethodGet, "/sessions/sess-1/samples", nil)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("samples status: %v", err)
	}
}

func TestSessionHandlersActiveNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, location_id, started_at, ended_at`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "location_id", "started_at", "ended_at"}))

	app := fiber.New()
	RegisterRoutes(app.Group("/sessions"), NewService(mock))

	req := httptest.NewRequest(http.MethodGet, "/sessions/active", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for no active session")
	}
}

func TestSessionHandlersActiveFound(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, location_id, started_at, ended_at`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "location_id", "started_at", "ended_at"}).
			AddRow("sess-1", "loc-1", time.Now(), nil))

	app := fiber.New()
	RegisterRoutes(app.Group("/sessions"), NewService(mock))

	req := httptest.NewRequest(http.MethodGet, "/sessions/active", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("expected active session")
	}
}
