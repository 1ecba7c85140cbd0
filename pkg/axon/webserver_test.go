package axon

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/receitas/pkg/axon/validation"
)

func TestReadBody(t *testing.T) {
	body, err := ReadBody(strings.NewReader("12345678"), 8)
	require.NoError(t, err)
	assert.Equal(t, "12345678", string(body))

	_, err = ReadBody(strings.NewReader("123456789"), 8)
	httpErr := AsHttpError(err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, httpErr.StatusCode)
	assert.Equal(t, MsgBodyTooLarge, httpErr.Message)

	_, err = ReadBody(iotest.ErrReader(errors.New("connection reset")), 8)
	httpErr = AsHttpError(err)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, validation.MsgInvalidBody, httpErr.Message)
	assert.ErrorContains(t, err, "connection reset")
}

func TestReadBody_DefaultLimit(t *testing.T) {
	body, err := ReadBody(strings.NewReader(strings.Repeat("a", int(DefaultBodyLimit))), 0)
	require.NoError(t, err)
	assert.Len(t, body, int(DefaultBodyLimit))

	_, err = ReadBody(strings.NewReader(strings.Repeat("a", int(DefaultBodyLimit)+1)), 0)
	assert.Equal(t, http.StatusRequestEntityTooLarge, AsHttpError(err).StatusCode)
}
