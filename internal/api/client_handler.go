package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/censudex-gateway/internal/api/shared"
	"github.com/phrazzld/censudex-gateway/internal/platform/backend/clients"
	"github.com/phrazzld/censudex-gateway/internal/platform/logger"
)

// ClientHandler handles client account requests.
type ClientHandler struct {
	open   ClientsOpener
	logger *slog.Logger
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(open ClientsOpener, logger *slog.Logger) *ClientHandler {
	if open == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("clients opener cannot be nil for ClientHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ClientHandler")
	}

	return &ClientHandler{
		open:   open,
		logger: logger.With(slog.String("component", "client_handler")),
	}
}

// CreateClient handles POST /clients.
func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	c, err := h.open(r.Context())
	if err != nil {
		clientResource.fail(w, r, err, rejectionIsBadRequest)
		return
	}
	defer c.Close()

	reply, err := c.CreateClient(r.Context(), clients.CreateRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		BirthDate: req.BirthDate,
		Address:   req.Address,
		Phone:     req.Phone,
	})
	if err != nil {
		clientResource.fail(w, r, err, rejectionIsBadRequest)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("client created",
		slog.String("client_id", reply.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, ClientEnvelope{
		Message: reply.Message,
		Client:  clientToResponse(reply.Record, timestamps{created: true}),
	})
}

// ListClients handles GET /clients. Empty query values are treated as absent.
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	filters := clients.Filters{
		Name:     q.String("name"),
		Email:    q.String("email"),
		Username: q.String("username"),
		IsActive: q.String("isActive"),
	}

	c, err := h.open(r.Context())
	if err != nil {
		clientResource.fail(w, r, err, rejectionIsBadRequest)
		return
	}
	defer c.Close()

	list, err := c.GetAllClients(r.Context(), filters)
	if err != nil {
		clientResource.fail(w, r, err, rejectionIsBadRequest)
		return
	}

	out := ClientListResponse{Count: list.Count, Clients: make([]ClientResponse, 0, len(list.Clients))}
	for _, rec := range list.Clients {
		out.Clients = append(out.Clients, clientToResponse(rec, timestamps{created: true}))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// GetClient handles GET /clients/{id}.
func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	c, err := h.open(r.Context())
	if err != nil {
		clientResource.fail(w, r, err, rejectionIsNotFound)
		return
	}
	defer c.Close()

	reply, err := c.GetClientByID(r.Context(), id, false)
	if err != nil {
		clientResource.fail(w, r, err, rejectionIsNotFound)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ClientEnvelope{
		Client: clientToResponse(reply.Record, timestamps{created: true, updated: true}),
	})
}

// UpdateClient handles PATCH /clients/{id}. Only the fields present and
// non-null in the body are forwarded.
func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateClientRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	c, err := h.open(r.Context())
	if err != nil {
		clientResource.fail(w, r, err, rejectionIsBadRequest)
		return
	}
	defer c.Close()

	reply, err := c.UpdateClient(r.Context(), id, clients.UpdateRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Username:  req.Username,
		BirthDate: req.BirthDate,
		Address:   req.Address,
		Phone:     req.Phone,
	})
	if err != nil {
		clientResource.fail(w, r, err, rejectionIsBadRequest)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ClientEnvelope{
		Message: reply.Message,
		Client:  clientToResponse(reply.Record, timestamps{updated: true}),
	})
}

// UpdatePassword handles PATCH /clients/{id}/password.
func (h *ClientHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdatePasswordRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	c, err := h.open(r.Context())
	if err != nil {
		clientResource.fail(w, r, err, rejectionIsBadRequest)
		return
	}
	defer c.Close()

	reply, err := c.UpdatePassword(r.Context(), id, req.Password)
	if err != nil {
		clientResource.fail(w, r, err, rejectionIsBadRequest)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: reply.Message})
}

// DeleteClient handles DELETE /clients/{id}.
func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	c, err := h.open(r.Context())
	if err != nil {
		clientResource.fail(w, r, err, rejectionIsNotFound)
		return
	}
	defer c.Close()

	reply, err := c.DeleteClient(r.Context(), id)
	if err != nil {
		clientResource.fail(w, r, err, rejectionIsNotFound)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("client deleted", slog.String("client_id", id))
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: reply.Message})
}
