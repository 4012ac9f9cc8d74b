package inventory

import "fmt"

// ValidationResult resultado de reglas de negocio: errores (rechazan) y advertencias (informan).
// Es un valor de retorno, no un error de Go: los rechazos esperados viajan aquí.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// IsValid true si no hay errores (las advertencias no invalidan).
func (r ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// AddError agrega un mensaje de rechazo.
func (r *ValidationResult) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// AddWarning agrega un mensaje informativo.
func (r *ValidationResult) AddWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Merge acumula otro resultado (sin cortocircuito).
func (r *ValidationResult) Merge(other ValidationResult) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}
