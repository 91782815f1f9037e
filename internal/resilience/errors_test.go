package resilience

import (
	"errors"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("validation failed")))
	assert.True(t, IsTransient(NewTransientError(errors.New("503"), 503)))
	assert.True(t, IsTransient(eris.Wrap(NewTransientError(errors.New("429"), 429), "search")))
	assert.True(t, IsTransient(errors.New("read tcp: connection reset by peer")))
	assert.True(t, IsTransient(errors.New("dial tcp: i/o timeout")))
}

func TestUnavailable(t *testing.T) {
	err := Unavailable("completion service", errors.New("connect refused"))
	assert.True(t, IsUnavailable(err))
	assert.Contains(t, err.Error(), "completion service unavailable")

	wrapped := eris.Wrap(err, "scoring stage")
	assert.True(t, IsUnavailable(wrapped))

	assert.False(t, IsUnavailable(errors.New("plain")))
}

func TestRetryableStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, RetryableStatus(code), "code %d", code)
	}
	for _, code := range []int{200, 201, 301, 400, 401, 403, 404, 422} {
		assert.False(t, RetryableStatus(code), "code %d", code)
	}
}
