package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/fneseed/internal/app/models/dto"
	"github.com/yigit/fneseed/internal/pkg/apperrors"
)

func TestHandleAPIErrorSeverity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := map[string]struct {
		err      error
		status   int
		code     dto.ErrorCode
		severity dto.ErrorSeverity
	}{
		"not found":   {apperrors.NewResourceNotFoundError("report missing"), http.StatusNotFound, dto.ErrorCodeResourceNotFound, dto.ErrorSeverityWarning},
		"bad request": {apperrors.NewBadRequestError("bad name"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, dto.ErrorSeverityWarning},
		"unexpected":  {errors.New("disk on fire"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, dto.ErrorSeverityError},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/reports/x", nil)

			HandleAPIError(c, tc.err)

			var body struct {
				Success bool             `json:"success"`
				Error   *dto.ErrorDetail `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.status, rec.Code)
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tc.code, body.Error.Code)
			assert.Equal(t, tc.severity, body.Error.Severity)
		})
	}
}
