package goerror_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "server", err: goerror.NewServer(errors.New("db down")), want: http.StatusInternalServerError},
		{name: "bad request", err: goerror.NewBusiness("bad", goerror.CodeBadRequest), want: http.StatusBadRequest},
		{name: "not found", err: goerror.NewBusiness("missing", goerror.CodeNotFound), want: http.StatusNotFound},
		{name: "conflict", err: goerror.NewBusiness("dup", goerror.CodeConflict), want: http.StatusConflict},
		{name: "invalid input", err: goerror.NewInvalidInput(nil, "code", "required"), want: http.StatusUnprocessableEntity},
		{name: "invalid format", err: goerror.NewInvalidFormat(), want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gerr *goerror.Error
			require.ErrorAs(t, tt.err, &gerr)
			assert.Equal(t, tt.want, gerr.StatusCode())
		})
	}
}

func TestNewBusinessWrap_KeepsCause(t *testing.T) {
	cause := errors.New("otp: invalid or expired code")

	err := goerror.NewBusinessWrap(cause, "Invalid or expired OTP", goerror.CodeBadRequest)

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Invalid or expired OTP", gerr.Msg())
	assert.Equal(t, goerror.TypeBusiness, gerr.Type())
}

func TestNewInvalidInput_Fields(t *testing.T) {
	err := goerror.NewInvalidInput(nil, "phone_number", "phone_number is required")

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, map[string]string{"phone_number": "phone_number is required"}, gerr.Fields())

	err = goerror.NewInvalidInput(nil, "odd")
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, goerror.CodeInvalidFormat, gerr.Code())
}
