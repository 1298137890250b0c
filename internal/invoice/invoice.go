// Package invoice derives human facing sale identifiers.
package invoice

import (
	"fmt"
	"time"
)

const prefix = "INV"

// Generate returns INV-YYMMDD-NNNN for a sale created at now.
//
// The sequence is saleCount+1 where saleCount is the number of sales stored so far,
// across all days. It does not restart daily and widens past four digits once the
// store holds more than 9999 sales. Deleting sales makes numbers repeat, which the
// unique index on the invoice number then rejects.
func Generate(now time.Time, saleCount int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, now.Format("060102"), saleCount+1)
}
