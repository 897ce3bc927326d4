package respond_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/subx/internal/http/respond"
)

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()

	respond.Error(rec, http.StatusBadRequest, "InvalidSqm")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"InvalidSqm"}`, rec.Body.String())
}

func TestDecode_RejectsUnknownFields(t *testing.T) {
	var body struct {
		Sqm int `json:"sqm"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"sqm":5}`))
	require.NoError(t, respond.Decode(req, &body))
	assert.Equal(t, 5, body.Sqm)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"sqm":5,"price":1}`))
	assert.Error(t, respond.Decode(req, &body))
}
