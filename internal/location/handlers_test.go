package location

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func TestLocationHandlers(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	createdAt := time.Now()
	mock.ExpectQuery(`INSERT INTO locations`).
		WithArgs(pgxmock.AnyArg(), "Home", 135.5023, 34.6937, 100.0, true).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	mock.ExpectQuery(`SELECT id, name, ST_Y\(center::geometry\), ST_X\(center::geometry\), radius_m, active, created_at`).
		WithArgs("loc-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "lat", "lng", "radius_m", "active", "created_at"}).
			AddRow("loc-1", "Home", 34.6937, 135.5023, 100.0, true, createdAt))

	app := fiber.New()
	RegisterRoutes(app.Group("/locations"), NewService(mock), func(c *fiber.Ctx) error { return c.Next() })

	body, _ := json.Marshal(Location{Name: "Home", Lat: 34.6937, Lng: 135.5023, RadiusM: 100, Active: true})
	req := httptest.NewRequest(http.MethodPost, "/locations/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("create location status: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/locations/loc-1", nil)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("get location status: %v", err)
	}
}

func TestLocationHandlersBadRequest(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/locations"), NewService(nil), func(c *fiber.Ctx) error { return c.Next() })

	req := httptest.NewRequest(http.MethodPost, "/locations/", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request")
	}
}

func TestLocationHandlersCreateParseError(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/locations"), NewService(nil), func(c *fiber.Ctx) error { return c.Next() })

	req := httptest.NewRequest(http.MethodPost, "/locations/", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request")
	}
}

func TestLocationHandlersDelete(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM locations`).
		WithArgs("loc-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	app := fiber.New()
	RegisterRoutes(app.Group("/locations"), NewService(mock), func(c *fiber.Ctx) error { return c.Next() })

	req := httptest.NewRequest(http.MethodDelete, "/locations/loc-1", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete location status: %v", err)
	}
}
