package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"chemnitz-facilities-api/internal/account"
	"chemnitz-facilities-api/internal/auth"
	"chemnitz-facilities-api/internal/facility"
	"chemnitz-facilities-api/internal/favorite"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"facility missing", fmt.Errorf("%w: S9", facility.ErrFacilityNotFound), http.StatusNotFound},
		{"user missing", account.ErrUserNotFound, http.StatusNotFound},
		{"bad document", facility.ErrUnrecognizedFacilityType, http.StatusBadRequest},
		{"unknown category", facility.ErrUnknownCategory, http.StatusBadRequest},
		{"invalid input", fmt.Errorf("%w: plz is required", account.ErrInvalidInput), http.StatusBadRequest},
		{"duplicate", account.ErrDuplicateIdentity, http.StatusBadRequest},
		{"nothing to clear", favorite.ErrNothingToClear, http.StatusBadRequest},
		{"bad credentials", account.ErrAuthenticationFailed, http.StatusUnauthorized},
		{"bad token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"aggregate wins over cause",
			fmt.Errorf("%w: %w", facility.ErrAggregateListingFailed, facility.ErrUnrecognizedFacilityType),
			http.StatusInternalServerError},
		{"anything else", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondError(c, tc.err, "Something failed")
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}
