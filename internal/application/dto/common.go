package dto

// ErrorResponse cuerpo de error HTTP.
// Details lleva el cuerpo de rechazo del servicio de catálogo (errores por campo) cuando existe.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// MessageResponse respuesta simple de confirmación.
type MessageResponse struct {
	Message string `json:"message"`
	// Warning se llena cuando la mutación se aplicó pero el refresco posterior falló.
	Warning string `json:"warning,omitempty"`
}
