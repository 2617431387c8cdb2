package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type signup struct {
	Name  string `form:"name" validate:"required,notblank"`
	Email string `form:"email_address" validate:"required"`
	Age   int    `validate:"gte=0"`
}

func TestTranslateErrors(t *testing.T) {
	validate, translator := NewValidator()

	err := validate.Struct(signup{Name: "   ", Age: -1})
	assert.True(t, IsValidationError(err))
	assert.Equal(t, map[string]string{
		"name":          "this field cannot be blank",
		"email_address": "this field is required",
		"age":           "age must be 0 or greater",
	}, TranslateErrors(err, translator))

	assert.NoError(t, validate.Struct(signup{Name: "Awe", Email: "awe@test.cd"}))

	appErr := NewValidationError(errors.New("taken"), FieldError{Field: "email", Error: "taken"})
	assert.True(t, IsValidationError(errors.Wrap(appErr, "registering")))
	assert.Equal(t, map[string]string{"email": "taken"}, TranslateErrors(errors.Wrap(appErr, "registering"), translator))

	assert.False(t, IsValidationError(errors.New("lol")))
	assert.Nil(t, TranslateErrors(errors.New("lol"), translator))
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Awe", CleanString("  Awe \t"))
	assert.Equal(t, "awe@test.cd", CleanString(" AWE@Test.cd ", true))
}
