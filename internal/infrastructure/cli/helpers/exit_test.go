package helpers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/doeshing/kgq/internal/domain"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitSuccess},
		{name: "exit error", err: NewExitError(ExitCommandError, "bad flag"), want: ExitCommandError},
		{name: "wrapped exit error", err: fmt.Errorf("run: %w", NewExitError(ExitFailure, "x")), want: ExitFailure},
		{name: "reported", err: Reported(errors.New("shown")), want: ExitFailure},
		{name: "transport", err: domain.NewError(domain.KindTransport, "down"), want: ExitFailure},
		{name: "validation", err: domain.FromSentinel(domain.KindValidation, domain.ErrEmptyQuery), want: ExitFailure},
		{name: "empty export", err: domain.FromSentinel(domain.KindEmptyExport, domain.ErrEmptyExport), want: ExitFailure},
		{name: "storage", err: domain.NewError(domain.KindStorage, "disk"), want: ExitCommandError},
		{name: "plain", err: errors.New("boom"), want: ExitCommandError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitErrorMessage(t *testing.T) {
	cause := errors.New("no such file")
	assert.Equal(t, "load: no such file", WrapExitError(ExitCommandError, "load", cause).Error())
	assert.Equal(t, "no such file", WrapExitError(ExitCommandError, "", cause).Error())
	assert.Equal(t, "usage", NewExitError(ExitCommandError, "usage").Error())
	assert.ErrorIs(t, WrapExitError(ExitFailure, "x", cause), cause)
}

func TestIsReported(t *testing.T) {
	assert.True(t, IsReported(Reported(errors.New("x"))))
	assert.True(t, IsReported(fmt.Errorf("wrapped: %w", Reported(errors.New("x")))))
	assert.False(t, IsReported(NewExitError(ExitFailure, "x")))
	assert.False(t, IsReported(errors.New("x")))
}
