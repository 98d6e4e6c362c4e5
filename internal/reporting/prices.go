package reporting

import (
	"sort"
	"strconv"

	"water-admin/internal/models"
)

type priceKey struct {
	clientID    models.ID
	containerID models.ID
}

// PriceResolver splits price rules into per (client, container) version
// histories. The first rule of each history is the active one.
type PriceResolver struct {
	groups map[priceKey][]models.PriceRule
}

// PriceHistory is the ordered version list for one (client, container) pair.
type PriceHistory struct {
	ClientID      models.ID          `json:"client_id"`
	ClientName    string             `json:"client_name,omitempty"`
	ContainerID   models.ID          `json:"container_id"`
	ContainerName string             `json:"container_name,omitempty"`
	Active        models.PriceRule   `json:"active"`
	Archived      []models.PriceRule `json:"archived"`
}

// NewPriceResolver groups rules and orders each group most recent first by
// effective_from, falling back to created_at. Equal version times are
// ordered by rule id, highest first.
func NewPriceResolver(rules []models.PriceRule) *PriceResolver {
	groups := make(map[priceKey][]models.PriceRule)
	for _, rule := range rules {
		key := priceKey{clientID: rule.ClientID, containerID: rule.ContainerID}
		groups[key] = append(groups[key], rule)
	}
	for _, history := range groups {
		sort.SliceStable(history, func(i, j int) bool {
			ti, tj := history[i].VersionTime().Time, history[j].VersionTime().Time
			if !ti.Equal(tj) {
				return ti.After(tj)
			}
			return compareIDs(history[i].ID, history[j].ID) > 0
		})
	}
	return &PriceResolver{groups: groups}
}

// IsActive reports whether rule heads its (client, container) history. Rules
// are compared by value since the backend may omit or repeat ids.
func (r *PriceResolver) IsActive(rule models.PriceRule) bool {
	history := r.groups[priceKey{clientID: rule.ClientID, containerID: rule.ContainerID}]
	if len(history) == 0 {
		return false
	}
	return sameRule(history[0], rule)
}

func sameRule(a, b models.PriceRule) bool {
	return a.ID == b.ID &&
		a.Price.Equal(b.Price.Decimal) &&
		sameTimestamp(a.EffectiveFrom, b.EffectiveFrom) &&
		sameTimestamp(a.CreatedAt, b.CreatedAt) &&
		a.ClientName == b.ClientName &&
		a.ContainerName == b.ContainerName
}

func sameTimestamp(a, b models.Timestamp) bool {
	return a.DateOnly == b.DateOnly && a.Time.Equal(b.Time)
}

// HistoryFor returns the versions for a pair, most recent first.
func (r *PriceResolver) HistoryFor(clientID, containerID models.ID) []models.PriceRule {
	history := r.groups[priceKey{clientID: clientID, containerID: containerID}]
	out := make([]models.PriceRule, len(history))
	copy(out, history)
	return out
}

// Active returns the active rule for a pair.
func (r *PriceResolver) Active(clientID, containerID models.ID) (models.PriceRule, bool) {
	history := r.groups[priceKey{clientID: clientID, containerID: containerID}]
	if len(history) == 0 {
		return models.PriceRule{}, false
	}
	return history[0], true
}

// Histories returns every group ordered by client then container.
func (r *PriceResolver) Histories() []PriceHistory {
	out := make([]PriceHistory, 0, len(r.groups))
	for key, history := range r.groups {
		active := history[0]
		archived := make([]models.PriceRule, len(history)-1)
		copy(archived, history[1:])
		out = append(out, PriceHistory{
			ClientID:      key.clientID,
			ClientName:    firstNonEmpty(history, func(p models.PriceRule) string { return p.ClientName }),
			ContainerID:   key.containerID,
			ContainerName: firstNonEmpty(history, func(p models.PriceRule) string { return p.ContainerName }),
			Active:        active,
			Archived:      archived,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := compareIDs(out[i].ClientID, out[j].ClientID); c != 0 {
			return c < 0
		}
		return compareIDs(out[i].ContainerID, out[j].ContainerID) < 0
	})
	return out
}

func firstNonEmpty(rules []models.PriceRule, field func(models.PriceRule) string) string {
	for _, rule := range rules {
		if v := field(rule); v != "" {
			return v
		}
	}
	return ""
}

// compareIDs orders numeric ids numerically and everything else lexically.
func compareIDs(a, b models.ID) int {
	na, errA := strconv.ParseInt(string(a), 10, 64)
	nb, errB := strconv.ParseInt(string(b), 10, 64)
	if errA == nil && errB == nil {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return 0
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
