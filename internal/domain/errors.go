package domain

import (
	"errors"
	"fmt"
)

// Taxonomía de errores del motor de cuadrantes. Los errores de configuración
// y de validación se rechazan antes de cualquier escritura; los conflictos
// indican una carrera sobre la misma ranura y admiten reintento.

var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrConflict          = errors.New("conflicto de concurrencia sobre la ranura, reintente la operación")
	ErrNoPostsConfigured = errors.New("la instalación no tiene puestos configurados")
)

type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "error de configuración: " + e.Reason
}

func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "error de validación: " + e.Reason
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
