package enums

// ProductStatus tracks a listing's lifecycle. Quantity is only ever
// decremented while the product is ACTIVE.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusSoldOut  ProductStatus = "SOLD_OUT"
	ProductStatusDelisted ProductStatus = "DELISTED"
)

var validProductStatuses = []ProductStatus{
	ProductStatusActive,
	ProductStatusSoldOut,
	ProductStatusDelisted,
}

// String implements fmt.Stringer.
func (s ProductStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ProductStatus.
func (s ProductStatus) IsValid() bool {
	for _, candidate := range validProductStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}
