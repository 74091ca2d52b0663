// Package validate aplica las reglas de creación y edición de items y
// traduce los fallos a un conjunto de campos inválidos (campo → true),
// de modo que la capa de presentación pueda resaltar exactamente qué
// inputs fallaron. Se reportan todos los fallos simultáneos, no solo el
// primero.
package validate

import (
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/backbar-app/backbar-api/internal/application/dto"
	"github.com/backbar-app/backbar-api/internal/domain/entity"
)

// FieldsError error de validación recuperable: se muestra al usuario por
// campo y nunca se registra como defecto.
type FieldsError struct {
	Fields map[string]bool
}

func (e *FieldsError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return "campos inválidos: " + strings.Join(names, ", ")
}

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// Regla "brand": el valor debe pertenecer a la enumeración fija de marcas.
	_ = val.RegisterValidation("brand", func(fl validator.FieldLevel) bool {
		return entity.Brand(fl.Field().String()).IsValid()
	})
	// Reportar los campos con el nombre del tag json, no el del struct Go.
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return val
}

// Create valida un CreateItemRequest. Devuelve nil si es válido o un
// *FieldsError con todos los campos que fallaron.
func Create(in dto.CreateItemRequest) error {
	return check(v.Struct(in))
}

// Edit valida un EditItemRequest (mismas reglas que Create, sin
// quantity_in_stock).
func Edit(in dto.EditItemRequest) error {
	return check(v.Struct(in))
}

func check(err error) error {
	if err == nil {
		return nil
	}
	fields := map[string]bool{}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			fields[fe.Field()] = true
		}
	}
	return &FieldsError{Fields: fields}
}
