package invoice_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/stockroom/internal/invoice"
)

func TestGenerate(t *testing.T) {
	day := time.Date(2025, time.March, 7, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		name      string
		now       time.Time
		saleCount int64
		want      string
	}{
		{name: "first sale", now: day, saleCount: 0, want: "INV-250307-0001"},
		{name: "zero padded", now: day, saleCount: 41, want: "INV-250307-0042"},
		{name: "does not restart on a new day", now: day.AddDate(0, 0, 1), saleCount: 41, want: "INV-250308-0042"},
		{name: "widens past four digits", now: day, saleCount: 9999, want: "INV-250307-10000"},
		{name: "two digit year", now: time.Date(2031, time.December, 31, 0, 0, 0, 0, time.UTC), saleCount: 1, want: "INV-311231-0002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, invoice.Generate(tt.now, tt.saleCount))
		})
	}
}

func TestGenerateSequentialAreDistinct(t *testing.T) {
	now := time.Now()
	assert.NotEqual(t, invoice.Generate(now, 5), invoice.Generate(now, 6))
}
