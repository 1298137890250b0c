package zerror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/stockroom/pkg/zerror"
)

func TestZError(t *testing.T) {
	notFound := zerror.NewNotFound("SALE_NOT_FOUND", "sale not found")

	t.Run("Should match by code and status through wrapping", func(t *testing.T) {
		err := fmt.Errorf("sale service get sale: %w", notFound.WithMsgf("sale %d not found", 7))

		assert.ErrorIs(t, err, notFound)
		assert.NotErrorIs(t, err, zerror.NewNotFound("PRODUCT_NOT_FOUND", "product not found"))

		var zErr zerror.ZError
		require.ErrorAs(t, err, &zErr)
		assert.Equal(t, "sale 7 not found", zErr.Msg())
		assert.Equal(t, zerror.StatusNotFound, zErr.Status())
	})

	t.Run("Should unwrap parent", func(t *testing.T) {
		parent := errors.New("boom")
		err := zerror.NewInternalServerError("INTERNAL", "internal").WrapParent(parent)

		assert.ErrorIs(t, err, parent)
		assert.Contains(t, err.Error(), "Parent=(boom)")
	})

	t.Run("Should ignore nil parent", func(t *testing.T) {
		err := notFound.WrapParent(nil)
		assert.Nil(t, err.Parent())
		assert.Equal(t, "Code=SALE_NOT_FOUND, Msg=sale not found", err.Error())
	})
}
