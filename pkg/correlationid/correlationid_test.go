package correlationid_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/stockroom/pkg/correlationid"
)

func TestContext(t *testing.T) {
	_, ok := correlationid.FromContext(context.Background())
	assert.False(t, ok)

	ctx := correlationid.NewContext(context.Background(), "abc")
	id, ok := correlationid.FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "abc", id)

	_, ok = correlationid.FromContext(correlationid.NewContext(context.Background(), ""))
	assert.False(t, ok)
}
