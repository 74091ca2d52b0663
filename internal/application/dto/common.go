package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Fields presente solo en errores de validación: nombre de campo → true
	// para cada campo que falló. El cliente resalta exactamente esos inputs.
	Fields map[string]bool `json:"fields,omitempty"`
}
