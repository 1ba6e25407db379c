package config

// OrdersConfig carries the checkout policy knobs.
//
// SkipUnknownProducts controls whether a cart line referencing a product that
// no longer exists is dropped silently or fails the whole checkout.
// AllowNegativeStock permits decrements below zero (backorders); when false a
// decrement that would go negative aborts the vendor group.
type OrdersConfig struct {
	SkipUnknownProducts bool `koanf:"skipUnknownProducts"`
	AllowNegativeStock  bool `koanf:"allowNegativeStock"`
}

func (c *OrdersConfig) Validate() error {
	return nil
}
