package detect

import "procwatch/internal/domain"

// recommendations are fixed human-guidance strings per anomaly type.
var recommendations = map[domain.AnomalyType][]string{
	domain.AnomalyPriceOutlier: {
		"compare the contract value against reference prices for the same item category",
		"request the price research attached to the procurement process",
		"check whether the contract was amended shortly after signing",
	},
	domain.AnomalyVendorConcentration: {
		"review the bidding modality used for this vendor's contracts",
		"check for common ownership between this vendor and losing bidders",
		"verify whether emergency or no-bid justifications were reused",
	},
	domain.AnomalyTemporalBurst: {
		"check whether the burst coincides with end-of-fiscal-year budget expiry",
		"look for fractioned purchases that individually avoid bidding thresholds",
	},
	domain.AnomalyNearDuplicate: {
		"confirm the contracts cover genuinely distinct deliveries",
		"sum the duplicate contracts and compare against the bidding-modality threshold",
	},
	domain.AnomalyPaymentDiscrepancy: {
		"request the amendment history justifying the value change",
		"verify measurement reports against the amounts actually paid",
	},
	domain.AnomalySpectralPattern: {
		"inspect the flagged periodicity for payment-splitting schedules",
		"compare the cycle against legitimate payroll or supply calendars",
	},
	domain.AnomalySynchronizedSpend: {
		"cross-check supplier overlap between the synchronized organizations",
		"review whether shared procurement calendars explain the synchronization",
	},
}

// RecommendationsFor returns the static guidance for a finding type.
func RecommendationsFor(t domain.AnomalyType) []string {
	return recommendations[t]
}
