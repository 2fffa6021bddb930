package ordernumber

import (
	"fmt"
	"strings"
	"time"

	"github.com/teamthreads/storefront/order/internal/service/models/environment"
)

// OrderNumber is a globally unique, human-readable order identifier of the
// form PREFIX-ENV-STORE-YYYYMMDD-NNNNNN.
type OrderNumber struct {
	Full  string `json:"full"`
	Short string `json:"short"`
}

// Format builds an order number from its components. The sequence is
// zero-padded to six digits; the short form is the final segment and is
// deliberately opaque about order volume.
func Format(
	prefix string,
	env environment.Environment,
	storeSlug string,
	date time.Time,
	sequence int64,
) OrderNumber {
	short := fmt.Sprintf("%06d", sequence)
	full := fmt.Sprintf("%s-%s-%s-%s-%s",
		strings.ToUpper(prefix),
		env.String(),
		strings.ToUpper(storeSlug),
		date.Format("20060102"),
		short,
	)

	return OrderNumber{Full: full, Short: short}
}
