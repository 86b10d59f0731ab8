package responsewriter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseWriter_Defaults(t *testing.T) {
	rw := Wrap(httptest.NewRecorder())
	assert.Equal(t, http.StatusOK, rw.StatusCode())
	assert.Zero(t, rw.BytesWritten())
}

func TestResponseWriter_FirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := Wrap(rec)
	rw.WriteHeader(http.StatusForbidden)
	rw.WriteHeader(http.StatusOK)
	assert.Equal(t, http.StatusForbidden, rw.StatusCode())
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestResponseWriter_WriteImpliesOK(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := Wrap(rec)
	n, err := rw.Write([]byte(`{"id":1}`))
	require.NoError(t, err)
	_, err = rw.Write([]byte("\n"))
	require.NoError(t, err)

	assert.Equal(t, 8, n)
	assert.Equal(t, 9, rw.BytesWritten())
	assert.Equal(t, http.StatusOK, rw.StatusCode())
	assert.Equal(t, "{\"id\":1}\n", rec.Body.String())
}

func TestWrap_Idempotent(t *testing.T) {
	rw := Wrap(httptest.NewRecorder())
	assert.Same(t, rw, Wrap(rw))
}

func TestResponseWriter_ControllerFlush(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := Wrap(rec)
	require.NoError(t, http.NewResponseController(rw).Flush())
	assert.True(t, rec.Flushed)
}
