package memory

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmehra2102/storefront-orders/internal/inventory/domain"
)

// ParseSeed reads stock levels written as "P1=5,P2:Sugar 1kg=3". The name is
// optional and defaults to the product id.
func ParseSeed(s string) ([]domain.StockLevel, error) {
	var levels []domain.StockLevel
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ref, qty, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("seed entry %q: missing '='", part)
		}
		n, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("seed entry %q: bad quantity", part)
		}
		id, name, _ := strings.Cut(ref, ":")
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("seed entry %q: missing product id", part)
		}
		if name = strings.TrimSpace(name); name == "" {
			name = id
		}
		levels = append(levels, domain.StockLevel{ProductID: id, Name: name, Quantity: n})
	}
	return levels, nil
}
