package catalog

// StoreConfig is the normalized store configuration. Historical data entry
// used several spellings for the same concept; aliases are resolved once in
// NormalizeConfig and nowhere else.
type StoreConfig struct {
	StoreSlug           string
	BusinessName        string
	OrderNumberPrefix   string
	AdminEmail          string
	OperatorEmail       string
	PaymentInstructions string
	ReplyToEmail        string
}

var configAliases = map[string][]string{
	"business_name":        {"business_name", "businessName", "store_name", "company_name"},
	"order_prefix":         {"order_prefix", "order_number_prefix", "orderPrefix"},
	"admin_email":          {"admin_email", "adminEmail", "store_email"},
	"operator_email":       {"operator_email", "tech_email", "escalation_email"},
	"payment_instructions": {"payment_instructions", "paymentInstructions", "payment_info"},
	"reply_to_email":       {"reply_to_email", "replyTo"},
}

func resolve(raw map[string]string, concept string) string {
	for _, key := range configAliases[concept] {
		if v, ok := raw[key]; ok && v != "" {
			return v
		}
	}

	return ""
}

// NormalizeConfig folds a raw key/value config map into a StoreConfig,
// resolving historical key aliases at this single boundary.
func NormalizeConfig(storeSlug string, raw map[string]string) StoreConfig {
	cfg := StoreConfig{
		StoreSlug:           storeSlug,
		BusinessName:        resolve(raw, "business_name"),
		OrderNumberPrefix:   resolve(raw, "order_prefix"),
		AdminEmail:          resolve(raw, "admin_email"),
		OperatorEmail:       resolve(raw, "operator_email"),
		PaymentInstructions: resolve(raw, "payment_instructions"),
		ReplyToEmail:        resolve(raw, "reply_to_email"),
	}

	if cfg.OrderNumberPrefix == "" {
		cfg.OrderNumberPrefix = "ORD"
	}

	return cfg
}
