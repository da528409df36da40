package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "fee:42", Key("fee", "42"))
}

func TestUnreachableServerReturnsError(t *testing.T) {
	c := New("127.0.0.1:1", "")
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := c.Get(ctx, "fee", "1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}
