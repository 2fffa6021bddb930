package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeConfig(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]string
		want StoreConfig
	}{
		{
			name: "canonical keys",
			raw: map[string]string{
				"business_name":        "Team Threads",
				"order_prefix":         "TT",
				"admin_email":          "admin@example.com",
				"operator_email":       "ops@example.com",
				"payment_instructions": "Pay at pickup.",
				"reply_to_email":       "orders@example.com",
			},
			want: StoreConfig{
				StoreSlug:           "phenoms",
				BusinessName:        "Team Threads",
				OrderNumberPrefix:   "TT",
				AdminEmail:          "admin@example.com",
				OperatorEmail:       "ops@example.com",
				PaymentInstructions: "Pay at pickup.",
				ReplyToEmail:        "orders@example.com",
			},
		},
		{
			name: "historical aliases resolve",
			raw: map[string]string{
				"store_name":          "Team Threads",
				"order_number_prefix": "TT",
				"store_email":         "admin@example.com",
				"tech_email":          "ops@example.com",
				"payment_info":        "Pay at pickup.",
			},
			want: StoreConfig{
				StoreSlug:           "phenoms",
				BusinessName:        "Team Threads",
				OrderNumberPrefix:   "TT",
				AdminEmail:          "admin@example.com",
				OperatorEmail:       "ops@example.com",
				PaymentInstructions: "Pay at pickup.",
			},
		},
		{
			name: "canonical key wins over alias",
			raw: map[string]string{
				"business_name": "Canonical",
				"store_name":    "Alias",
			},
			want: StoreConfig{
				StoreSlug:         "phenoms",
				BusinessName:      "Canonical",
				OrderNumberPrefix: "ORD",
			},
		},
		{
			name: "empty values fall through to the next alias",
			raw: map[string]string{
				"business_name": "",
				"store_name":    "Alias",
			},
			want: StoreConfig{
				StoreSlug:         "phenoms",
				BusinessName:      "Alias",
				OrderNumberPrefix: "ORD",
			},
		},
		{
			name: "missing prefix defaults",
			raw:  map[string]string{},
			want: StoreConfig{
				StoreSlug:         "phenoms",
				OrderNumberPrefix: "ORD",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeConfig("phenoms", tt.raw))
		})
	}
}
