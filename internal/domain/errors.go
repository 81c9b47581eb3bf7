package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
// Los errores estructurados de abajo envuelven estos centinelas: clasificar con errors.Is,
// leer el detalle con errors.As.
var (
	ErrValidation        = errors.New("entrada inválida")
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrAuth              = errors.New("autenticación fallida")
	ErrUnauthenticated   = errors.New("sesión no autenticada")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrRejected          = errors.New("operación rechazada por el servicio de catálogo")
	ErrUnreachable       = errors.New("servicio de catálogo inalcanzable")
	ErrAlreadyEditing    = errors.New("el registro ya tiene una edición abierta")
	ErrPartialCreation   = errors.New("producto creado pero sin registro de inventario")
	ErrNoActiveWarehouse = errors.New("la sesión no tiene bodega activa")
)

// ValidationError precondición local incumplida; nunca se intentó I/O de red.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid atajo para construir un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// AuthError login fallido (credenciales inválidas o red). El estado previo de la sesión no cambia.
type AuthError struct {
	Reason string
	Cause  error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", ErrAuth, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrAuth, e.Reason)
}

// Unwrap expone el centinela y la causa (Unauthorized, Unreachable, ...).
func (e *AuthError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrAuth}
	}
	return []error{ErrAuth, e.Cause}
}

// RejectedError el servicio aceptó la forma de la petición pero rehusó la operación
// (p. ej. SKU duplicado). Details conserva el cuerpo decodificado de la respuesta.
type RejectedError struct {
	Status  int
	Details map[string]any
	Raw     string
}

func (e *RejectedError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("%s (HTTP %d): %s", ErrRejected, e.Status, e.Raw)
	}
	return fmt.Sprintf("%s (HTTP %d)", ErrRejected, e.Status)
}

func (e *RejectedError) Unwrap() error {
	if e.Status == 404 {
		return ErrNotFound
	}
	return ErrRejected
}

// Is permite que un 404 también se reconozca como ErrRejected.
func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

// UnreachableError fallo de transporte (timeout, DNS, conexión rechazada).
type UnreachableError struct {
	Op    string
	Cause error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrUnreachable, e.Op, e.Cause)
}

func (e *UnreachableError) Unwrap() []error { return []error{ErrUnreachable, e.Cause} }

// PartialCreationError el producto quedó creado en el servicio remoto pero el registro
// de inventario falló. El producto queda disponible para "seleccionar existente".
type PartialCreationError struct {
	ProductID int64
	Cause     error
}

func (e *PartialCreationError) Error() string {
	return fmt.Sprintf("%s (product_id=%d): %v", ErrPartialCreation, e.ProductID, e.Cause)
}

func (e *PartialCreationError) Unwrap() []error { return []error{ErrPartialCreation, e.Cause} }
