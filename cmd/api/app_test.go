package main

import (
	"bytes"
	"database/sql"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/juju/errors"
	"github.com/rs/zerolog"

	"github.com/wichananm65/person-api/internal/config"
	"github.com/wichananm65/person-api/internal/metrics"
	"github.com/wichananm65/person-api/internal/person"
)

func newTestApp(t *testing.T, logs *bytes.Buffer) *fiber.App {
	t.Helper()
	log := zerolog.New(logs)
	recorder := metrics.New()
	service := person.NewService(person.NewInMemoryRepository(nil), recorder, log)
	return newApp(config.Config{CORSOrigins: "*"}, log, recorder, person.NewHandler(service))
}

func TestApp_HealthAndMetrics(t *testing.T) {
	var logs bytes.Buffer
	app := newTestApp(t, &logs)

	res, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", res.StatusCode)
	}

	// one failed lookup so the counter shows up
	if _, err := app.Test(httptest.NewRequest("GET", "/person/1", nil)); err != nil {
		t.Fatalf("person request failed: %v", err)
	}

	res, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), `operation="find_by_id",outcome="not_found"`) {
		t.Fatalf("expected find_by_id counter in metrics output")
	}
	if !strings.Contains(logs.String(), `"path":"/person/1"`) {
		t.Fatalf("expected access log line for /person/1, got %s", logs.String())
	}
}

func TestApp_PersonLifecycle(t *testing.T) {
	var logs bytes.Buffer
	app := newTestApp(t, &logs)

	create := `{"firstName":"Leandro","lastName":"Costa","email":"leandro@erudio.com.br","address":"Minas Gerais","gender":"Male"}`
	req := httptest.NewRequest("POST", "/person", strings.NewReader(create))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil || res.StatusCode != fiber.StatusOK {
		t.Fatalf("create failed: %v %v", err, res)
	}

	update := `{"id":1,"firstName":"Leonardo","lastName":"Costa","email":"leonardo@erudio.com.br","address":"Minas Gerais","gender":"Male"}`
	req = httptest.NewRequest("PUT", "/person", strings.NewReader(update))
	req.Header.Set("Content-Type", "application/json")
	res, err = app.Test(req)
	if err != nil || res.StatusCode != fiber.StatusOK {
		t.Fatalf("update failed: %v %v", err, res)
	}

	res, err = app.Test(httptest.NewRequest("DELETE", "/person/1", nil))
	if err != nil || res.StatusCode != fiber.StatusNoContent {
		t.Fatalf("delete failed: %v %v", err, res)
	}

	res, err = app.Test(httptest.NewRequest("GET", "/person/1", nil))
	if err != nil || res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 after delete: %v %v", err, res)
	}
}

func TestApp_UnknownRouteUsesJSONError(t *testing.T) {
	var logs bytes.Buffer
	app := newTestApp(t, &logs)

	res, err := app.Test(httptest.NewRequest("GET", "/nope", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), `"message"`) {
		t.Fatalf("expected json error body, got %s", b)
	}
}

func TestErrorHandler_UnwrapsFiberError(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Get("/wrapped", func(c *fiber.Ctx) error {
		return errors.Annotate(fiber.NewError(fiber.StatusTeapot, "short and stout"), "brewing")
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return errors.New("disk on fire")
	})

	res, err := app.Test(httptest.NewRequest("GET", "/wrapped", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	b, _ := io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusTeapot || !strings.Contains(string(b), "short and stout") {
		t.Fatalf("expected wrapped fiber error to keep its status, got %d: %s", res.StatusCode, b)
	}

	res, err = app.Test(httptest.NewRequest("GET", "/plain", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	b, _ = io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusInternalServerError || strings.Contains(string(b), "disk on fire") {
		t.Fatalf("expected opaque 500, got %d: %s", res.StatusCode, b)
	}
}

func TestApp_SwaggerUI(t *testing.T) {
	var logs bytes.Buffer
	app := newTestApp(t, &logs)

	res, err := app.Test(httptest.NewRequest("GET", SwaggerPath+"/index.html", nil))
	if err != nil {
		t.Fatalf("swagger request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 from swagger index, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), "Swagger UI") {
		t.Fatalf("expected Swagger UI page, got %s", b)
	}

	res, err = app.Test(httptest.NewRequest("GET", SwaggerPath+"/doc.json", nil))
	if err != nil {
		t.Fatalf("doc request failed: %v", err)
	}
	b, _ = io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusOK || !strings.Contains(string(b), "/person/search") {
		t.Fatalf("expected swagger document listing /person/search, got %d", res.StatusCode)
	}
}

func TestNewSQLRepository(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	repo, err := newSQLRepository(config.StorePostgres, db)
	if err != nil {
		t.Fatalf("postgres: %v", err)
	}
	if _, ok := repo.(*person.PostgresRepository); !ok {
		t.Fatalf("expected *person.PostgresRepository, got %T", repo)
	}

	repo, err = newSQLRepository(config.StoreGorm, db)
	if err != nil {
		t.Fatalf("gorm: %v", err)
	}
	if _, ok := repo.(*person.GormRepository); !ok {
		t.Fatalf("expected *person.GormRepository, got %T", repo)
	}

	if _, err := newSQLRepository("redis", (*sql.DB)(nil)); err == nil {
		t.Fatalf("expected error for unknown store")
	}
}
