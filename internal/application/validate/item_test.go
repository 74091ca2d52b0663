package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backbar-app/backbar-api/internal/application/dto"
	"github.com/backbar-app/backbar-api/internal/application/validate"
)

func validCreate() dto.CreateItemRequest {
	return dto.CreateItemRequest{
		Name:              "Toner A",
		Brand:             "Rhapsody",
		Quantity:          10,
		QuantityInStock:   2,
		LowStockThreshold: 3,
	}
}

func TestCreate_Valido(t *testing.T) {
	assert.NoError(t, validate.Create(validCreate()))
}

func TestCreate_NombreVacio(t *testing.T) {
	in := validCreate()
	in.Name = ""

	err := validate.Create(in)
	require.Error(t, err)

	ferr, ok := err.(*validate.FieldsError)
	require.True(t, ok, "debe ser un error de validación con campos")
	assert.True(t, ferr.Fields["name"])
	assert.Len(t, ferr.Fields, 1, "solo name debe fallar")
}

func TestCreate_MarcaFueraDeEnumeracion(t *testing.T) {
	in := validCreate()
	in.Brand = "Wella"

	err := validate.Create(in)
	require.Error(t, err)
	ferr := err.(*validate.FieldsError)
	assert.True(t, ferr.Fields["brand"], "marca fuera de la enumeración debe rechazarse")
}

func TestCreate_QuantityCeroInvalido(t *testing.T) {
	in := validCreate()
	in.Quantity = 0 // objetivo de stock lleno cero no es válido

	err := validate.Create(in)
	require.Error(t, err)
	assert.True(t, err.(*validate.FieldsError).Fields["quantity"])
}

func TestCreate_StockYUmbralCeroSonValidos(t *testing.T) {
	in := validCreate()
	in.QuantityInStock = 0
	in.LowStockThreshold = 0
	assert.NoError(t, validate.Create(in))
}

// Varios fallos simultáneos se reportan todos, no solo el primero.
func TestCreate_ReportaTodosLosCampos(t *testing.T) {
	in := dto.CreateItemRequest{
		Name:              "",
		Brand:             "marca-falsa",
		Quantity:          0,
		QuantityInStock:   -1,
		LowStockThreshold: -2,
	}

	err := validate.Create(in)
	require.Error(t, err)
	ferr := err.(*validate.FieldsError)

	for _, field := range []string{"name", "brand", "quantity", "quantity_in_stock", "low_stock_threshold"} {
		assert.True(t, ferr.Fields[field], "el campo %s debe estar marcado", field)
	}
}

func TestEdit_MismoEsquemaSinStock(t *testing.T) {
	err := validate.Edit(dto.EditItemRequest{
		Name:              "Toner A",
		Brand:             "Shades EQ",
		Quantity:          5,
		LowStockThreshold: 0,
	})
	assert.NoError(t, err)

	err = validate.Edit(dto.EditItemRequest{Name: "x", Brand: "Shades EQ", Quantity: 0})
	require.Error(t, err)
	assert.True(t, err.(*validate.FieldsError).Fields["quantity"])
}
