package rate

import "strings"

// Match picks the rate whose route cluster is the longest one contained in
// destination, compared case-insensitively. rates should already be narrowed
// to the shipment's vehicle type.
func Match(rates []PayrollRate, destination string) (PayrollRate, bool) {
	dest := strings.ToLower(destination)
	best := -1
	for i, r := range rates {
		cluster := strings.ToLower(strings.TrimSpace(r.RouteCluster))
		if cluster == "" || !strings.Contains(dest, cluster) {
			continue
		}
		if best < 0 || len(cluster) > len(strings.TrimSpace(rates[best].RouteCluster)) {
			best = i
		}
	}
	if best < 0 {
		return PayrollRate{}, false
	}
	return rates[best], true
}
