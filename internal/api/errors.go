package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/phrazzld/censudex-gateway/internal/api/shared"
	"github.com/phrazzld/censudex-gateway/internal/domain"
	"github.com/phrazzld/censudex-gateway/internal/platform/backend"
)

// Messages returned to clients for failures that carry no backend detail.
const (
	MsgValidation         = "Validation error"
	MsgUnauthorized       = "Token invalido o expirado"
	MsgAuthUnavailable    = "Error conectando con Auth Service"
	MsgNotFound           = "Recurso no encontrado"
	MsgRejected           = "Solicitud rechazada"
	MsgBackendUnavailable = "Error de comunicación con el servicio"
	MsgUnexpected         = "Error interno del servidor"
)

// MapErrorToStatusCode maps domain errors to HTTP status codes so that
// handlers never decide statuses from error strings.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusUnprocessableEntity

	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrAuthServiceUnavailable):
		return http.StatusServiceUnavailable

	// checked before rejections: an unavailable backend never reports not-found
	case errors.Is(err, domain.ErrBackendUnavailable):
		return http.StatusInternalServerError

	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrDomainRejected):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err. Backend
// rejections pass the backend's own detail through; transport failures never
// expose theirs.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return MsgUnexpected
	}

	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return MsgValidation

	case errors.Is(err, domain.ErrUnauthorized):
		return MsgUnauthorized

	case errors.Is(err, domain.ErrAuthServiceUnavailable):
		return MsgAuthUnavailable

	case errors.Is(err, domain.ErrBackendUnavailable):
		return MsgBackendUnavailable

	case errors.Is(err, domain.ErrNotFound):
		return MsgNotFound

	case errors.Is(err, domain.ErrDomainRejected):
		if detail, ok := backend.Detail(err); ok {
			return detail
		}
		return MsgRejected

	default:
		return MsgUnexpected
	}
}

// HandleAPIError writes the mapped status and safe message for err, logging
// the full error. defaultMsg replaces the generic message of unclassified
// server errors when it is not empty.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)

	var opts []shared.ResponseOption
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		opts = append(opts, shared.WithDetails(verr.Fields))
	}

	if status == http.StatusInternalServerError && !errors.Is(err, domain.ErrBackendUnavailable) && defaultMsg != "" {
		msg = defaultMsg
	}

	shared.RespondWithErrorAndLog(w, r, status, msg, err, opts...)
}

// lookupMode tells how a route treats backend rejections.
type lookupMode int

const (
	// rejectionIsBadRequest maps rejections to 400, except not-found codes.
	rejectionIsBadRequest lookupMode = iota
	// rejectionIsNotFound maps every rejection to 404. Used by routes that
	// address a single existing entity.
	rejectionIsNotFound
)

// resource carries the per-backend wording of failure responses.
type resource struct {
	service  string
	notFound string
}

var (
	clientResource      = resource{service: "clientes", notFound: "Cliente no encontrado"}
	productResource     = resource{service: "productos", notFound: "Producto no encontrado"}
	orderResource       = resource{service: "pedidos", notFound: "Pedido no encontrado"}
	orderCancelResource = resource{service: "pedidos", notFound: "Pedido no encontrado o no puede ser cancelado"}
)

// fail writes the response for a failed adapter call on this resource.
func (res resource) fail(w http.ResponseWriter, r *http.Request, err error, mode lookupMode) {
	switch {
	case errors.Is(err, domain.ErrBackendUnavailable):
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			fmt.Sprintf("%s de %s", MsgBackendUnavailable, res.service), err)

	case errors.Is(err, domain.ErrNotFound),
		mode == rejectionIsNotFound && errors.Is(err, domain.ErrDomainRejected):
		shared.RespondWithErrorAndLog(w, r, http.StatusNotFound, res.notFound, err)

	default:
		HandleAPIError(w, r, err, "")
	}
}

// rejected writes a response for a reply whose success flag was false.
func (res resource) rejected(w http.ResponseWriter, r *http.Request, status int, message string) {
	if message == "" {
		if status == http.StatusNotFound {
			message = res.notFound
		} else {
			message = MsgRejected
		}
	}
	shared.RespondWithError(w, r, status, message)
}
