package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoadapters/coinsbit/currency"
)

func validSubmit() *Submit {
	return &Submit{
		Pair:   currency.NewPairWithDelimiter("ETH", "BTC", "/"),
		Type:   Limit,
		Side:   Buy,
		Price:  0.05,
		Amount: 1,
	}
}

func TestSubmitValidate(t *testing.T) {
	t.Parallel()
	var nilSubmit *Submit
	assert.ErrorIs(t, nilSubmit.Validate(), ErrSubmissionIsNil)

	require.NoError(t, validSubmit().Validate())

	s := validSubmit()
	s.Pair = currency.EMPTYPAIR
	assert.ErrorIs(t, s.Validate(), ErrPairIsEmpty)

	s = validSubmit()
	s.Side = AnySide
	assert.ErrorIs(t, s.Validate(), ErrSideIsInvalid)

	s = validSubmit()
	s.Type = AnyType
	assert.ErrorIs(t, s.Validate(), ErrTypeIsInvalid)

	s = validSubmit()
	s.Amount = 0
	assert.ErrorIs(t, s.Validate(), ErrAmountIsInvalid)

	s = validSubmit()
	s.Price = 0
	assert.ErrorIs(t, s.Validate(), ErrPriceMustBeSetIfLimitOrder)
}

func TestStringToOrderSide(t *testing.T) {
	t.Parallel()
	side, err := StringToOrderSide("buy")
	require.NoError(t, err)
	assert.Equal(t, Buy, side)

	side, err = StringToOrderSide("SELL")
	require.NoError(t, err)
	assert.Equal(t, Sell, side)

	_, err = StringToOrderSide("hold")
	assert.Error(t, err)
}

func TestStringToOrderType(t *testing.T) {
	t.Parallel()
	oType, err := StringToOrderType("limit")
	require.NoError(t, err)
	assert.Equal(t, Limit, oType)

	oType, err = StringToOrderType("MARKET")
	require.NoError(t, err)
	assert.Equal(t, Market, oType)

	_, err = StringToOrderType("twap")
	assert.Error(t, err)
}

func TestCaseHelpers(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "buy", Buy.Lower())
	assert.Equal(t, "LIMIT", Limit.String())
	assert.Equal(t, "open", Open.Lower())
}
