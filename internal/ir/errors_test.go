package ir

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigurationErrorMessage(t *testing.T) {
	err := &ConfigurationError{
		Scope:       "with_associated",
		Option:      "associated_against",
		Association: "another_model",
		Message:     "unknown relation",
	}

	assert.Equal(t,
		`configuration error: scope "with_associated": associated_against: association "another_model": unknown relation`,
		err.Error())

	bare := &ConfigurationError{Message: "too many weights"}
	assert.Equal(t, "configuration error: too many weights", bare.Error())
}

func TestArgumentErrorMessage(t *testing.T) {
	err := &ArgumentError{Option: "joins", Message: "query layer does not support joins"}
	assert.Equal(t, "argument error: joins: query layer does not support joins", err.Error())
	assert.Contains(t, NewBlankQueryError().Error(), "query")
}

func TestErrorHelpersUnwrap(t *testing.T) {
	wrappedConfig := fmt.Errorf("prepare: %w", NewUnknownAssociationError("author", "no such relation"))
	wrappedArg := fmt.Errorf("compile: %w", NewBlankQueryError())

	assert.True(t, IsConfigurationError(wrappedConfig))
	assert.False(t, IsArgumentError(wrappedConfig))
	assert.True(t, IsArgumentError(wrappedArg))
	assert.False(t, IsConfigurationError(wrappedArg))
	assert.False(t, IsConfigurationError(nil))
}
