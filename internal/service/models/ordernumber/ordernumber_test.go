package ordernumber

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/teamthreads/storefront/order/internal/service/models/environment"
)

func TestFormat(t *testing.T) {
	date := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		prefix   string
		env      environment.Environment
		store    string
		sequence int64
		want     string
	}{
		{
			name:     "production",
			prefix:   "ORD",
			env:      environment.EnvironmentProduction,
			store:    "phenoms",
			sequence: 42,
			want:     "ORD-PROD-PHENOMS-20250810-000042",
		},
		{
			name:     "lowercase prefix and store are uppercased",
			prefix:   "tt",
			env:      environment.EnvironmentStaging,
			store:    "phenoms",
			sequence: 7,
			want:     "TT-STG-PHENOMS-20250810-000007",
		},
		{
			name:     "sequence beyond six digits is not truncated",
			prefix:   "ORD",
			env:      environment.EnvironmentLocal,
			store:    "phenoms",
			sequence: 1_234_567,
			want:     "ORD-LOCAL-PHENOMS-20250810-1234567",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			number := Format(tt.prefix, tt.env, tt.store, date, tt.sequence)

			assert.Equal(t, tt.want, number.Full)
			assert.True(t, len(number.Short) >= 6)
		})
	}
}
