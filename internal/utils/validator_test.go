// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricepulse/pricepulse-backend/internal/models"
)

type currencyField struct {
	Currency string `validate:"omitempty,currency_code"`
}

type categoryField struct {
	Category string `validate:"omitempty,product_category"`
}

type phoneField struct {
	Phone string `validate:"omitempty,phone"`
}

func TestCurrencyCodeValidation(t *testing.T) {
	assert.NoError(t, ValidateStruct(&currencyField{Currency: "USD"}))
	assert.NoError(t, ValidateStruct(&currencyField{Currency: "EUR"}))
	assert.NoError(t, ValidateStruct(&currencyField{}))

	assert.Error(t, ValidateStruct(&currencyField{Currency: "usd"}))
	assert.Error(t, ValidateStruct(&currencyField{Currency: "DOLLARS"}))
	assert.Error(t, ValidateStruct(&currencyField{Currency: "U1D"}))
}

func TestProductCategoryValidation(t *testing.T) {
	assert.NoError(t, ValidateStruct(&categoryField{Category: "Electronics"}))
	assert.NoError(t, ValidateStruct(&categoryField{Category: "Home & Garden"}))
	assert.NoError(t, ValidateStruct(&categoryField{}))

	assert.Error(t, ValidateStruct(&categoryField{Category: "Weapons"}))
	assert.Error(t, ValidateStruct(&categoryField{Category: "electronics"}))
}

func TestPhoneValidation(t *testing.T) {
	assert.NoError(t, ValidateStruct(&phoneField{Phone: "+15551234567"}))
	assert.NoError(t, ValidateStruct(&phoneField{Phone: "5551234567"}))
	assert.NoError(t, ValidateStruct(&phoneField{}))

	assert.Error(t, ValidateStruct(&phoneField{Phone: "555-123"}))
	assert.Error(t, ValidateStruct(&phoneField{Phone: "not-a-number"}))
}

func TestGetValidationErrors(t *testing.T) {
	type form struct {
		Name  string `validate:"required,min=2"`
		Email string `validate:"required,email"`
	}

	err := ValidateStruct(&form{Name: "", Email: "nope"})
	errs := GetValidationErrors(err)

	assert.Len(t, errs, 2)
	assert.Equal(t, "name", errs[0].Field)
	assert.Equal(t, "Name is required", errs[0].Message)
	assert.Equal(t, "email", errs[1].Field)
	assert.Equal(t, "Invalid email format", errs[1].Message)
}

func TestGetValidationErrorsNonValidatorError(t *testing.T) {
	assert.Empty(t, GetValidationErrors(assert.AnError))
	assert.Empty(t, GetValidationErrors(nil))
}

type registrationFields struct {
	Name  string `validate:"required,min=2"`
	Email string `validate:"required,email"`
}

func TestValidationErrorFromCarriesFields(t *testing.T) {
	err := ValidateStruct(&registrationFields{Email: "not-an-email"})
	require.Error(t, err)

	converted := ValidationErrorFrom(err)
	assert.True(t, models.IsValidation(converted))

	var ve *models.ValidationError
	require.ErrorAs(t, converted, &ve)
	assert.Equal(t, "Name is required", ve.Fields["name"])
	assert.Equal(t, "Invalid email format", ve.Fields["email"])
}

func TestValidationErrorFromNonValidatorError(t *testing.T) {
	converted := ValidationErrorFrom(assert.AnError)
	assert.True(t, models.IsValidation(converted))

	var ve *models.ValidationError
	require.ErrorAs(t, converted, &ve)
	assert.Empty(t, ve.Fields)
	assert.Equal(t, assert.AnError.Error(), ve.Message)
}
