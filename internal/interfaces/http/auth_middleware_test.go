package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	apphttp "github.com/jhoicas/backoffice-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/backoffice-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "backoffice-test"
)

func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	return "Bearer " + signToken(t, testJWTSecret, role, 60)
}

func signToken(t *testing.T, secret, role string, expMinutes int) string {
	t.Helper()
	tok, err := pkgjwt.Generate(secret, testUserID, role, testIssuer, expMinutes)
	require.NoError(t, err)
	return tok
}

// guardedApp replica los tres guardias del router: bodega, contabilidad y admin.
// Cada ruta responde con el actor que quedó en Locals.
func guardedApp() *fiber.App {
	app := fiber.New()
	api := app.Group("/api", apphttp.AuthMiddleware(testJWTSecret))
	actor := func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": apphttp.GetUserID(c), "role": apphttp.GetRole(c)})
	}
	api.Get("/abierta", actor)
	api.Post("/movimientos", apphttp.RequireRole(pkgjwt.RoleAdmin, pkgjwt.RoleWarehouse), actor)
	api.Post("/asientos", apphttp.RequireRole(pkgjwt.RoleAdmin, pkgjwt.RoleAccountant), actor)
	api.Post("/recalculo", apphttp.RequireRole(pkgjwt.RoleAdmin), actor)
	return app
}

func send(t *testing.T, app *fiber.App, method, path, authorization string) (int, dto.ErrorResponse, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e dto.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
		return resp.StatusCode, e, nil
	}
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, dto.ErrorResponse{}, body
}

func TestRequireRole_MatrizDeRoles(t *testing.T) {
	app := guardedApp()
	cases := []struct {
		method, path, role string
		want               int
	}{
		{http.MethodPost, "/api/movimientos", pkgjwt.RoleWarehouse, http.StatusOK},
		{http.MethodPost, "/api/movimientos", pkgjwt.RoleAdmin, http.StatusOK},
		{http.MethodPost, "/api/movimientos", pkgjwt.RoleAccountant, http.StatusForbidden},
		{http.MethodPost, "/api/asientos", pkgjwt.RoleAccountant, http.StatusOK},
		{http.MethodPost, "/api/asientos", pkgjwt.RoleAdmin, http.StatusOK},
		{http.MethodPost, "/api/asientos", pkgjwt.RoleWarehouse, http.StatusForbidden},
		{http.MethodPost, "/api/recalculo", pkgjwt.RoleAdmin, http.StatusOK},
		{http.MethodPost, "/api/recalculo", pkgjwt.RoleWarehouse, http.StatusForbidden},
		{http.MethodPost, "/api/recalculo", pkgjwt.RoleAccountant, http.StatusForbidden},
		{http.MethodGet, "/api/abierta", pkgjwt.RoleWarehouse, http.StatusOK},
		{http.MethodGet, "/api/abierta", pkgjwt.RoleAccountant, http.StatusOK},
		{http.MethodPost, "/api/movimientos", "auditor", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.role+" "+tc.path, func(t *testing.T) {
			status, e, body := send(t, app, tc.method, tc.path, tokenForRole(t, tc.role))
			require.Equal(t, tc.want, status)
			if tc.want == http.StatusForbidden {
				assert.Equal(t, "FORBIDDEN", e.Code)
				return
			}
			assert.Equal(t, tc.role, body["role"])
			assert.Equal(t, testUserID, body["user_id"])
		})
	}
}

func TestAuthMiddleware_CredencialesRechazadas(t *testing.T) {
	app := guardedApp()
	cases := []struct {
		name, authorization string
		wantCode            string
	}{
		{"sin cabecera", "", "MISSING_TOKEN"},
		{"esquema distinto", "Token " + signToken(t, testJWTSecret, pkgjwt.RoleAdmin, 60), "INVALID_TOKEN"},
		{"token malformado", "Bearer no.es.jwt", "INVALID_TOKEN"},
		{"firmado con otro secreto", "Bearer " + signToken(t, "otro-secreto", pkgjwt.RoleAdmin, 60), "INVALID_TOKEN"},
		{"expirado", "Bearer " + signToken(t, testJWTSecret, pkgjwt.RoleAdmin, -5), "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, e, _ := send(t, app, http.MethodGet, "/api/abierta", tc.authorization)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, tc.wantCode, e.Code)
		})
	}
}

func TestAuthMiddleware_EsquemaBearerSinDistinguirMayusculas(t *testing.T) {
	status, _, body := send(t, guardedApp(), http.MethodPost, "/api/asientos",
		"bearer "+signToken(t, testJWTSecret, pkgjwt.RoleAccountant, 60))

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, pkgjwt.RoleAccountant, body["role"])
}

// Un token válido sin rol autentica pero no autoriza escrituras.
func TestRequireRole_TokenSinRol(t *testing.T) {
	app := guardedApp()
	tok := "Bearer " + signToken(t, testJWTSecret, "", 60)

	status, _, body := send(t, app, http.MethodGet, "/api/abierta", tok)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["role"])

	status, e, _ := send(t, app, http.MethodPost, "/api/movimientos", tok)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_ROLE", e.Code)
}
