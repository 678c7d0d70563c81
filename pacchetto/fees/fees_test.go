package fees

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validatorFunc func(ctx context.Context, addr Address) (Validation, error)

func (f validatorFunc) ValidateAddress(ctx context.Context, addr Address) (Validation, error) {
	return f(ctx, addr)
}

var errUnreachable = errors.New("dial tcp: connection refused")

func unreachable(calls *atomic.Int32) validatorFunc {
	return func(ctx context.Context, addr Address) (Validation, error) {
		calls.Add(1)
		return Validation{}, errUnreachable
	}
}

func TestValidatePostalCode(t *testing.T) {
	tests := []struct {
		code  string
		valid bool
	}{
		{"4210", true},
		{"0000", true},
		{"12", false},
		{"12345", false},
		{"12a4", false},
		{"", false},
		{"４２１０", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := ValidatePostalCode(tt.code)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidPostalCode)
			}
		})
	}
}

func TestFallbackFee(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"4000", "6.00"},
		{"4999", "6.00"},
		{"8001", "8.00"},
		{"3012", "7.00"},
		{"1200", "9.00"},
		{"1299", "9.00"},
		{"1300", "10.00"},
		{"9000", "10.00"},
		{"12", "10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, FallbackFee(tt.code).StringFixed(2))
		})
	}
}

func TestEstimate(t *testing.T) {
	ctx := context.Background()

	t.Run("unreachable validator falls back to the table", func(t *testing.T) {
		var calls atomic.Int32
		calc := NewCalculator(unreachable(&calls))

		q, err := calc.Estimate(ctx, Address{Street: "Rheinweg 1", City: "Muttenz", PostalCode: "4210"})
		require.NoError(t, err)
		assert.Equal(t, "6.00", q.Fee.StringFixed(2))
		assert.Equal(t, SourceFallback, q.Source)

		q, err = calc.Estimate(ctx, Address{Street: "Bahnhofstrasse 1", City: "Zürich", PostalCode: "8001"})
		require.NoError(t, err)
		assert.Equal(t, "8.00", q.Fee.StringFixed(2))
		assert.EqualValues(t, 2, calls.Load())
	})

	t.Run("malformed postal code never reaches the validator", func(t *testing.T) {
		var calls atomic.Int32
		calc := NewCalculator(unreachable(&calls))

		q, err := calc.Estimate(ctx, Address{Street: "Rue 1", City: "Genève", PostalCode: "12"})
		assert.ErrorIs(t, err, ErrInvalidPostalCode)
		assert.ErrorIs(t, q.Err, ErrInvalidPostalCode)
		assert.Equal(t, "6.00", q.Fee.StringFixed(2))
		assert.Zero(t, calls.Load())
	})

	t.Run("incomplete address keeps the default", func(t *testing.T) {
		var calls atomic.Int32
		calc := NewCalculator(unreachable(&calls))

		q, err := calc.Estimate(ctx, Address{City: "Bern", PostalCode: "3000"})
		require.NoError(t, err)
		assert.Equal(t, SourceDefault, q.Source)
		assert.True(t, q.Fee.Equal(DefaultFee))
		assert.Zero(t, calls.Load())
	})

	t.Run("validated fee is adopted", func(t *testing.T) {
		calc := NewCalculator(validatorFunc(func(ctx context.Context, addr Address) (Validation, error) {
			return Validation{Valid: true, DeliveryFee: decimal.RequireFromString("7.50")}, nil
		}))

		q, err := calc.Estimate(ctx, Address{Street: "Marktgasse 2", City: "Bern", PostalCode: "3011"})
		require.NoError(t, err)
		assert.Equal(t, SourceValidated, q.Source)
		assert.Equal(t, "7.50", q.Fee.StringFixed(2))
	})

	t.Run("refused address surfaces the message", func(t *testing.T) {
		calc := NewCalculator(validatorFunc(func(ctx context.Context, addr Address) (Validation, error) {
			return Validation{Valid: false, Message: "we do not deliver to Lugano yet"}, nil
		}))

		q, err := calc.Estimate(ctx, Address{Street: "Via Nassa 5", City: "Lugano", PostalCode: "6900"})
		assert.ErrorIs(t, err, ErrAddressRejected)
		assert.Contains(t, err.Error(), "Lugano")
		assert.Equal(t, "10.00", q.Fee.StringFixed(2))
	})
}

func TestUpdateDebounces(t *testing.T) {
	var (
		mu    sync.Mutex
		seen  []string
		calls atomic.Int32
	)
	validator := validatorFunc(func(ctx context.Context, addr Address) (Validation, error) {
		calls.Add(1)
		return Validation{Valid: true, DeliveryFee: FallbackFee(addr.PostalCode)}, nil
	})
	calc := NewCalculator(validator,
		WithDebounce(30*time.Millisecond),
		WithListener(func(q Quote) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, q.Address.PostalCode)
		}),
	)
	defer calc.Close()

	for _, code := range []string{"8", "80", "800", "8001"} {
		calc.Update(Address{Street: "Bahnhofstrasse 1", City: "Zürich", PostalCode: code})
	}

	assert.Eventually(t, func() bool {
		return calc.Current().Source == SourceValidated
	}, time.Second, 5*time.Millisecond)

	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, "8.00", calc.Current().Fee.StringFixed(2))
	mu.Lock()
	assert.Equal(t, []string{"8001"}, seen)
	mu.Unlock()
}

func TestUpdateCancelsSupersededRequest(t *testing.T) {
	started := make(chan struct{})
	validator := validatorFunc(func(ctx context.Context, addr Address) (Validation, error) {
		if addr.PostalCode == "8001" {
			close(started)
			<-ctx.Done()
			return Validation{}, ctx.Err()
		}
		return Validation{Valid: true, DeliveryFee: FallbackFee(addr.PostalCode)}, nil
	})

	var got []Quote
	var mu sync.Mutex
	calc := NewCalculator(validator,
		WithDebounce(time.Millisecond),
		WithListener(func(q Quote) {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, q)
		}),
	)
	defer calc.Close()

	calc.Update(Address{Street: "Bahnhofstrasse 1", City: "Zürich", PostalCode: "8001"})
	<-started
	calc.Update(Address{Street: "Rheinweg 1", City: "Muttenz", PostalCode: "4210"})

	assert.Eventually(t, func() bool {
		return calc.Current().Address.PostalCode == "4210"
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, "6.00", got[0].Fee.StringFixed(2))
}

func TestUpdateResetsOnClearedField(t *testing.T) {
	calc := NewCalculator(unreachable(new(atomic.Int32)), WithDebounce(time.Hour))
	defer calc.Close()

	calc.Update(Address{Street: "Bahnhofstrasse 1", City: "Zürich", PostalCode: "8001"})
	calc.Update(Address{Street: "Bahnhofstrasse 1", City: "", PostalCode: "8001"})

	q := calc.Current()
	assert.Equal(t, SourceDefault, q.Source)
	assert.True(t, q.Fee.Equal(DefaultFee))
}
