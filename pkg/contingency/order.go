package contingency

import (
	"sort"

	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// TryOrder returns the order in which providers are consulted for req: the preferred
// provider first when it is usable, then the remaining usable providers by ascending
// priority. Equal priorities keep their input order. Disabled providers never appear,
// so a disabled preferred key is ignored.
func TryOrder(req types.Request, providers []types.ProviderDescriptor) []types.ProviderDescriptor {
	usable := make([]types.ProviderDescriptor, 0, len(providers))
	for _, p := range providers {
		if p.Usable() {
			usable = append(usable, p)
		}
	}

	sort.SliceStable(usable, func(i, j int) bool {
		return usable[i].Priority < usable[j].Priority
	})

	if req.PreferredProviderKey == "" {
		return usable
	}

	for i, p := range usable {
		if p.Key != req.PreferredProviderKey {
			continue
		}
		order := make([]types.ProviderDescriptor, 0, len(usable))
		order = append(order, p)
		order = append(order, usable[:i]...)
		order = append(order, usable[i+1:]...)
		return order
	}
	return usable
}
