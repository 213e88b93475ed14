package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"

	"github.com/phrazzld/censudex-gateway/internal/platform/backend"
	"github.com/phrazzld/censudex-gateway/internal/platform/backend/backendtest"
	"github.com/phrazzld/censudex-gateway/internal/platform/backend/clients"
)

func clientRecord() *backend.Fields {
	return backend.NewFields().
		Set("id", "c-1").
		Set("firstName", "Ana").
		Set("lastName", "Rojas").
		Set("email", "ana@censudex.cl").
		Set("username", "arojas").
		Set("role", "cliente").
		Set("isActive", true).
		Set("birthDate", "1990-05-01").
		Set("address", "Av. Angamos 0610").
		Set("phone", "+56911111111").
		Set("createdAt", "2025-01-01T10:00:00Z").
		Set("updatedAt", "2025-02-01T10:00:00Z")
}

func clientRouter(t *testing.T, pool *backend.Pool) chi.Router {
	t.Helper()

	h := NewClientHandler(ClientsFromPool(pool), testLogger())
	r := chi.NewRouter()
	r.Post("/clients", h.CreateClient)
	r.Get("/clients", h.ListClients)
	r.Get("/clients/{id}", h.GetClient)
	r.Patch("/clients/{id}", h.UpdateClient)
	r.Patch("/clients/{id}/password", h.UpdatePassword)
	r.Delete("/clients/{id}", h.DeleteClient)
	return r
}

const validClientBody = `{
	"firstName": "Ana",
	"lastName": "Rojas",
	"email": "ana@censudex.cl",
	"username": "arojas",
	"password": "secreto123",
	"birthDate": "1990-05-01",
	"address": "Av. Angamos 0610",
	"phone": "+56911111111"
}`

func TestCreateClient(t *testing.T) {
	srv := backendtest.NewServer(t, clients.Schema)
	srv.Reply(clients.MethodCreateClient, clientRecord().Set("message", "Cliente creado exitosamente"))
	router := clientRouter(t, srv.Pool(t, "clients", backend.ModeShared))

	rec := do(t, router, http.MethodPost, "/clients", validClientBody)

	assertStatus(t, rec, http.StatusCreated)
	body := decode(t, rec)
	assert.Equal(t, "Cliente creado exitosamente", body["message"])
	client := body["client"].(map[string]any)
	assert.Equal(t, "c-1", client["id"])
	assert.Equal(t, "2025-01-01T10:00:00Z", client["createdAt"])
	assert.NotContains(t, client, "updatedAt")
	assert.NotContains(t, client, "password")

	calls := srv.CallsTo(clients.MethodCreateClient)
	require.Len(t, calls, 1)
	assert.Equal(t, "secreto123", calls[0].Fields()["password"])
}

func TestCreateClientValidation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields []string
	}{
		{
			name:       "invalid email and date",
			body:       `{"firstName":"Ana","lastName":"Rojas","email":"nope","username":"a","password":"x","birthDate":"01-05-1990","address":"a","phone":"1"}`,
			wantFields: []string{"email", "birthDate"},
		},
		{
			name:       "missing fields",
			body:       `{"firstName":"Ana"}`,
			wantFields: []string{"lastName", "email", "username", "password", "birthDate", "address", "phone"},
		},
		{
			name:       "malformed json",
			body:       `{"firstName":`,
			wantFields: []string{"body"},
		},
		{
			name:       "wrong type",
			body:       `{"firstName": 12}`,
			wantFields: []string{"body"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := backendtest.NewServer(t, clients.Schema)
			pool := srv.Pool(t, "clients", backend.ModeShared)
			router := clientRouter(t, pool)

			rec := do(t, router, http.MethodPost, "/clients", tt.body)

			assertStatus(t, rec, http.StatusUnprocessableEntity)
			body := decode(t, rec)
			assert.Equal(t, MsgValidation, body["error"])
			assert.ElementsMatch(t, tt.wantFields, errorDetails(t, body))
			assert.Empty(t, srv.Calls(), "no backend call on invalid payload")
			assert.Equal(t, int64(0), pool.InFlight())
		})
	}
}

func TestListClientsFilters(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  map[string]any
	}{
		{name: "no filters", query: "", want: map[string]any{}},
		{name: "empty values are ignored", query: "?name=&email=", want: map[string]any{}},
		{name: "present filters", query: "?username=arojas&isActive=true", want: map[string]any{"username": "arojas", "isActive": "true"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := backendtest.NewServer(t, clients.Schema)
			srv.Reply(clients.MethodGetAllClients, backend.NewFields().
				Set("count", 1).
				Set("clients", []*backend.Fields{clientRecord()}))
			router := clientRouter(t, srv.Pool(t, "clients", backend.ModeShared))

			rec := do(t, router, http.MethodGet, "/clients"+tt.query, "")

			assertStatus(t, rec, http.StatusOK)
			body := decode(t, rec)
			assert.Equal(t, float64(1), body["count"])
			list := body["clients"].([]any)
			require.Len(t, list, 1)
			assert.NotContains(t, list[0].(map[string]any), "updatedAt")
			assert.Equal(t, tt.want, srv.Calls()[0].Fields())
		})
	}
}

func TestGetClient(t *testing.T) {
	srv := backendtest.NewServer(t, clients.Schema)
	srv.Reply(clients.MethodGetClientByID, clientRecord())
	router := clientRouter(t, srv.Pool(t, "clients", backend.ModeShared))

	rec := do(t, router, http.MethodGet, "/clients/c-1", "")

	assertStatus(t, rec, http.StatusOK)
	client := decode(t, rec)["client"].(map[string]any)
	assert.Equal(t, "2025-01-01T10:00:00Z", client["createdAt"])
	assert.Equal(t, "2025-02-01T10:00:00Z", client["updatedAt"])
	assert.Equal(t, map[string]any{"id": "c-1"}, srv.Calls()[0].Fields())
}

func TestUpdateClientForwardsOnlyPresentFields(t *testing.T) {
	srv := backendtest.NewServer(t, clients.Schema)
	srv.Reply(clients.MethodUpdateClient, clientRecord().Set("message", "Cliente actualizado"))
	router := clientRouter(t, srv.Pool(t, "clients", backend.ModeShared))

	rec := do(t, router, http.MethodPatch, "/clients/c-1", `{"address":"Nueva 123","phone":null}`)

	assertStatus(t, rec, http.StatusOK)
	body := decode(t, rec)
	assert.Equal(t, "Cliente actualizado", body["message"])
	client := body["client"].(map[string]any)
	assert.Contains(t, client, "updatedAt")
	assert.NotContains(t, client, "createdAt")
	assert.Equal(t, map[string]any{"id": "c-1", "address": "Nueva 123"}, srv.Calls()[0].Fields())
}

func TestUpdateClientRejectsInvalidEmail(t *testing.T) {
	srv := backendtest.NewServer(t, clients.Schema)
	router := clientRouter(t, srv.Pool(t, "clients", backend.ModeShared))

	rec := do(t, router, http.MethodPatch, "/clients/c-1", `{"email":"not-an-email"}`)

	assertStatus(t, rec, http.StatusUnprocessableEntity)
	assert.Equal(t, []string{"email"}, errorDetails(t, decode(t, rec)))
	assert.Empty(t, srv.Calls())
}

func TestUpdatePassword(t *testing.T) {
	srv := backendtest.NewServer(t, clients.Schema)
	srv.Reply(clients.MethodUpdatePassword, backend.NewFields().Set("message", "Contraseña actualizada"))
	router := clientRouter(t, srv.Pool(t, "clients", backend.ModeShared))

	rec := do(t, router, http.MethodPatch, "/clients/c-1/password", `{"password":"otra"}`)

	assertStatus(t, rec, http.StatusOK)
	assert.Equal(t, map[string]any{"message": "Contraseña actualizada"}, decode(t, rec))

	rec = do(t, router, http.MethodPatch, "/clients/c-1/password", `{"password":""}`)
	assertStatus(t, rec, http.StatusUnprocessableEntity)
	assert.Len(t, srv.Calls(), 1)
}

func TestDeleteClientNotFound(t *testing.T) {
	srv := backendtest.NewServer(t, clients.Schema)
	srv.Fail(clients.MethodDeleteClient, codes.NotFound, "client XYZ not found")
	pool := srv.Pool(t, "clients", backend.ModePerRequest)
	router := clientRouter(t, pool)

	rec := do(t, router, http.MethodDelete, "/clients/XYZ", "")

	assertStatus(t, rec, http.StatusNotFound)
	assert.Equal(t, "Cliente no encontrado", decode(t, rec)["error"])
	assert.Equal(t, int64(0), pool.InFlight(), "lease must be released on the error path")
}

func TestClientsBackendHandlerFailure(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		rpc        string
		code       codes.Code
		path       string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "delete with unknown status",
			method:     http.MethodDelete,
			rpc:        clients.MethodDeleteClient,
			code:       codes.Unknown,
			path:       "/clients/XYZ",
			wantStatus: http.StatusNotFound,
			wantMsg:    "Cliente no encontrado",
		},
		{
			name:       "create with unknown status keeps detail",
			method:     http.MethodPost,
			rpc:        clients.MethodCreateClient,
			code:       codes.Unknown,
			path:       "/clients",
			body:       validClientBody,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "El email ya está registrado",
		},
		{
			name:       "create with internal status keeps detail",
			method:     http.MethodPost,
			rpc:        clients.MethodCreateClient,
			code:       codes.Internal,
			path:       "/clients",
			body:       validClientBody,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "El email ya está registrado",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := backendtest.NewServer(t, clients.Schema)
			msg := tt.wantMsg
			if tt.wantStatus == http.StatusNotFound {
				msg = "Cliente no encontrado en la base de datos"
			}
			srv.Fail(tt.rpc, tt.code, msg)
			pool := srv.Pool(t, "clients", backend.ModePerRequest)
			router := clientRouter(t, pool)

			rec := do(t, router, tt.method, tt.path, tt.body)

			assertStatus(t, rec, tt.wantStatus)
			assert.Equal(t, tt.wantMsg, decode(t, rec)["error"])
			assert.Equal(t, int64(0), pool.InFlight())
		})
	}
}

func TestClientsBackendUnavailable(t *testing.T) {
	pool := backendtest.UnreachablePool(t, "clients")
	router := clientRouter(t, pool)

	rec := do(t, router, http.MethodGet, "/clients/c-1", "")

	assertStatus(t, rec, http.StatusInternalServerError)
	assert.Equal(t, "Error de comunicación con el servicio de clientes", decode(t, rec)["error"])
	assert.Equal(t, int64(0), pool.InFlight())
}

func TestNewClientHandlerPanicsOnNilDependencies(t *testing.T) {
	assert.Panics(t, func() { NewClientHandler(nil, testLogger()) })
	assert.Panics(t, func() {
		NewClientHandler(func(ctx context.Context) (ClientsBackend, error) { return nil, nil }, nil)
	})
}
