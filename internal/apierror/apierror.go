// Package apierror provides the error envelope returned to API clients and the
// domain error taxonomy every layer wraps its failures in.
// Handlers translate the taxonomy to HTTP status codes; internal details
// (driver errors, stack traces) never reach the client.
package apierror

import (
	"errors"
	"net/http"
)

// Domain errors. Wrap them with fmt.Errorf("...: %w", ErrX) to keep a specific
// message while errors.Is still resolves the category.
var (
	ErrValidation         = errors.New("datos invalidos")
	ErrInvalidID          = errors.New("ID invalido")
	ErrInvalidCredentials = errors.New("credenciales invalidas")
	ErrUnauthenticated    = errors.New("autenticacion requerida")
	ErrAccessDenied       = errors.New("acceso denegado")
	ErrNotFound           = errors.New("no encontrado")
	ErrCredentialConflict = errors.New("el email o el nombre de usuario ya estan en uso")
	ErrNameConflict       = errors.New("ya existe un registro con ese nombre")
	ErrNumberConflict     = errors.New("ya existe una taquilla con este numero en el centro de apuestas")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInvalidRole        = errors.New("rol no valido: debe ser 'super_admin', 'admin_centro' o 'user'")
	ErrInvalidStatus      = errors.New("estado no valido: debe ser 'active', 'inactive' o 'maintenance'")
	ErrInvalidPermission  = errors.New("permiso no valido")
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Error string `json:"error"`
}

func New(msg string) *APIError {
	return &APIError{Error: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Error: "Error de validacion", Fields: fields}
}

// Status maps a domain error to its HTTP status code. Unknown errors map to 500.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidPermission):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrCredentialConflict),
		errors.Is(err, ErrNameConflict),
		errors.Is(err, ErrNumberConflict),
		errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
