package strcase_test

import (
	"testing"

	"github.com/shandysiswandi/otpgate/internal/pkg/strcase"
	"github.com/stretchr/testify/assert"
)

func TestToLowerSnake(t *testing.T) {
	tests := map[string]string{
		"":               "",
		"Code":           "code",
		"UserID":         "user_id",
		"OrganizationID": "organization_id",
		"PhoneNumber":    "phone_number",
		"HTTPServer":     "http_server",
		"otp2Code":       "otp2_code",
	}

	for in, want := range tests {
		assert.Equal(t, want, strcase.ToLowerSnake(in), in)
	}
}
