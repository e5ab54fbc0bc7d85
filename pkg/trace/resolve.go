package trace

import (
	"github.com/tracewalk-network/tracewalk/pkg/model"
)

// ResolveDevice maps an IP to a device record. Exact management-IP matches
// are preferred; otherwise the longest-prefix owned-subnet match is used.
// With several candidates, site affinity from the previous hop is applied:
// identical underlay addressing across sites is common, and the previous
// hop's site is usually the right pick before asking a human.
//
// The full candidate set considered is always returned so an ambiguous
// result is actionable.
func (t *Tracer) ResolveDevice(ip string, previousHop *model.PathHop) model.ResolveResult {
	candidates := t.inventory.FindByManagementIP(ip)
	if len(candidates) == 0 {
		candidates = t.inventory.FindBySubnet(ip)
	}

	switch len(candidates) {
	case 0:
		return model.ResolveResult{Status: model.ResolveNotFound}
	case 1:
		return model.ResolveResult{
			Device:     candidates[0],
			Status:     model.ResolveOK,
			Candidates: candidates,
		}
	}

	if previousHop != nil && previousHop.Device != nil && previousHop.Device.Site != "" {
		site := previousHop.Device.Site
		var filtered []*model.NetworkDevice
		for _, c := range candidates {
			if c.Site == site {
				filtered = append(filtered, c)
			}
		}
		switch len(filtered) {
		case 1:
			return model.ResolveResult{
				Device:     filtered[0],
				Status:     model.ResolveBySite,
				Candidates: candidates,
			}
		case 0:
			// No candidate at the previous hop's site: fall through with
			// the full set.
		default:
			return model.ResolveResult{
				Status:     model.ResolveAmbiguous,
				Candidates: filtered,
			}
		}
	}

	return model.ResolveResult{
		Status:     model.ResolveAmbiguous,
		Candidates: candidates,
	}
}
