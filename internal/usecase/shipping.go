package usecase

// 配送料の段階（グラム単位の総重量）。境界値は上の段に入る
const (
	shippingTierMediumFrom = 500
	shippingTierHeavyFrom  = 2000
)

// ShippingPriceは総重量から配送料を決める純粋関数。
func ShippingPrice(totalWeight float64) float64 {
	switch {
	case totalWeight < shippingTierMediumFrom:
		return 5
	case totalWeight < shippingTierHeavyFrom:
		return 10
	default:
		return 25
	}
}
