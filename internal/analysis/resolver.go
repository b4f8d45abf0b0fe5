package analysis

import (
	"sort"

	"github.com/sirupsen/logrus"

	"rtmslfp/domain/record"
)

// ResolutionTier identifies which source a population resolved from.
type ResolutionTier int

const (
	// TierNone means no source yielded data for the population.
	TierNone ResolutionTier = iota
	// TierRoster resolved explicit gids from the per-cell roster.
	TierRoster
	// TierCellCounts inferred contiguous gid ranges from the configured
	// cell-count table and population order.
	TierCellCounts
	// TierRosterTags fell back to counting roster entries by population
	// tag, using the roster position as the implicit gid.
	TierRosterTags
)

func (t ResolutionTier) String() string {
	switch t {
	case TierRoster:
		return "roster"
	case TierCellCounts:
		return "cell-counts"
	case TierRosterTags:
		return "roster-tags"
	default:
		return "none"
	}
}

// Resolver maps population names to cell-id sets for one loaded record.
//
// Each source in the record can disagree, so resolution walks a fixed
// reliability ladder: explicit roster gids, then the configured cell-count
// table (ids inferred from contiguous gid assignment in population order),
// then roster tag counting, then zero/empty. CellIDs and CellCount share
// the ladder so a caller cross-referencing spikes against ids never sees
// count/id mismatches from mixed tiers.
//
// Results are cached per Resolver, i.e. per record instance; a new record
// needs a new Resolver.
type Resolver struct {
	rec   *record.SimulationRecord
	cache map[string]resolution
}

type resolution struct {
	ids  []int
	tier ResolutionTier
}

// NewResolver builds a resolver bound to one record instance.
func NewResolver(rec *record.SimulationRecord) *Resolver {
	return &Resolver{rec: rec, cache: make(map[string]resolution)}
}

// CellIDs returns the population's cell ids in ascending order. Empty, not
// an error, when no source knows the population.
func (r *Resolver) CellIDs(pop string) []int {
	return r.resolve(pop).ids
}

// CellCount returns the population's cell count from the same resolution
// ladder as CellIDs, so len(CellIDs(pop)) == CellCount(pop) always holds.
func (r *Resolver) CellCount(pop string) int {
	return len(r.resolve(pop).ids)
}

// Tier reports which ladder rung the population resolved from.
func (r *Resolver) Tier(pop string) ResolutionTier {
	return r.resolve(pop).tier
}

func (r *Resolver) resolve(pop string) resolution {
	if res, ok := r.cache[pop]; ok {
		return res
	}
	res := r.lookup(pop)
	if res.tier > TierRoster && res.tier != TierNone {
		logrus.WithFields(logrus.Fields{
			"population": pop,
			"tier":       res.tier.String(),
			"cells":      len(res.ids),
		}).Warn("analysis: population resolved via fallback source")
	}
	r.cache[pop] = res
	return res
}

func (r *Resolver) lookup(pop string) resolution {
	// Most authoritative: explicit gids from the per-cell roster.
	if ids := r.rosterIDs(pop); len(ids) > 0 {
		return resolution{ids: ids, tier: TierRoster}
	}

	// Next: configured cell counts with contiguous gid-range inference.
	if ids := r.countTableIDs(pop); len(ids) > 0 {
		return resolution{ids: ids, tier: TierCellCounts}
	}

	// Last resort: roster entries whose tag matches, position as gid.
	if ids := r.rosterTagIDs(pop); len(ids) > 0 {
		return resolution{ids: ids, tier: TierRosterTags}
	}

	return resolution{tier: TierNone}
}

func (r *Resolver) rosterIDs(pop string) []int {
	var ids []int
	for _, cell := range r.rec.Roster {
		if cell.Population == pop && cell.GID >= 0 {
			ids = append(ids, cell.GID)
		}
	}
	sort.Ints(ids)
	return ids
}

func (r *Resolver) countTableIDs(pop string) []int {
	counts := r.rec.Config.CellCounts
	if len(counts) == 0 {
		return nil
	}
	start := 0
	for _, name := range r.rec.Config.PopulationOrder() {
		n := counts[name]
		if name == pop {
			ids := make([]int, n)
			for i := range ids {
				ids[i] = start + i
			}
			return ids
		}
		start += n
	}
	return nil
}

func (r *Resolver) rosterTagIDs(pop string) []int {
	var ids []int
	for i, cell := range r.rec.Roster {
		if cell.Population == pop {
			ids = append(ids, i)
		}
	}
	return ids
}
