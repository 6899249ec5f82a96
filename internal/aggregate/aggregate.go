// Package aggregate derives per-paper entity co-occurrences, updates
// entity counters, and merges knowledge-graph triple candidates from
// a paper's recorded entity mentions (spec.md §4.13).
package aggregate

import (
	"context"
	"sort"

	"github.com/nishad/oncotarget/internal/apperrors"
	"github.com/nishad/oncotarget/internal/ids"
	"github.com/nishad/oncotarget/internal/kg"
	"github.com/nishad/oncotarget/internal/models"
	"github.com/nishad/oncotarget/internal/repository"
)

// predicateTable maps an unordered pair of entity types to the fixed
// predicate emitted for a co-occurring mention pair (spec.md §4.13 step
// 4). Pairs not present here fall back to "related_to".
var predicateTable = map[[2]models.EntityType]string{
	{models.EntityGene, models.EntityDisease}:     "associated_with",
	{models.EntityGene, models.EntityChemical}:    "interacts_with",
	{models.EntityChemical, models.EntityDisease}: "treats",
	{models.EntityMutation, models.EntityDisease}: "causes",
	{models.EntityGene, models.EntityMutation}:    "has_variant",
}

const defaultPredicate = "related_to"

// predicateFor looks up the fixed predicate for an unordered pair of
// entity types, trying both orderings before falling back to
// defaultPredicate.
func predicateFor(a, b models.EntityType) string {
	if p, ok := predicateTable[[2]models.EntityType{a, b}]; ok {
		return p
	}
	if p, ok := predicateTable[[2]models.EntityType{b, a}]; ok {
		return p
	}
	return defaultPredicate
}

// Aggregator drives the per-paper aggregation pipeline against a
// repository and knowledge-graph store.
type Aggregator struct {
	repo *repository.DB
	kg   *kg.Store
}

// New builds an Aggregator over repo, wrapping repo in its own
// kg.Store for triple merging.
func New(repo *repository.DB) *Aggregator {
	return &Aggregator{repo: repo, kg: kg.New(repo)}
}

// Result summarizes one AggregatePaper call for logging/progress
// reporting.
type Result struct {
	CoOccurrences int
	TriplesMerged int
	EntitiesSeen  int
}

// AggregatePaper runs spec.md §4.13's five steps for one paper: loads
// mentions, emits co-occurrences within each chunk, bumps entity
// counters, and merges KG-triple candidates.
func (a *Aggregator) AggregatePaper(ctx context.Context, paperID ids.ID) (Result, error) {
	mentions, err := a.repo.GetMentionsByPaper(ctx, paperID)
	if err != nil {
		return Result{}, apperrors.Wrap("aggregate.AggregatePaper", err)
	}
	if len(mentions) == 0 {
		return Result{}, nil
	}

	byChunk := make(map[ids.ID][]models.EntityMention)
	seenEntities := make(map[ids.ID]struct{})
	for _, m := range mentions {
		byChunk[m.ChunkID] = append(byChunk[m.ChunkID], m)
		seenEntities[m.EntityID] = struct{}{}
	}

	entityTypes, err := a.loadEntityTypes(ctx, seenEntities)
	if err != nil {
		return Result{}, apperrors.Wrap("aggregate.AggregatePaper", err)
	}

	var res Result
	res.EntitiesSeen = len(seenEntities)

	now := ids.Now()
	for _, group := range byChunk {
		pairs := coOccurringPairs(group)
		for _, pair := range pairs {
			res.CoOccurrences++
			if err := a.mergeTriple(ctx, pair, entityTypes); err != nil {
				return res, apperrors.Wrap("aggregate.AggregatePaper", err)
			}
			res.TriplesMerged++
		}
	}

	for entityID := range seenEntities {
		mentionCount := 0
		for _, m := range mentions {
			if m.EntityID == entityID {
				mentionCount++
			}
		}
		if err := a.repo.IncrementEntityCounters(ctx, entityID, mentionCount, 1, now); err != nil {
			return res, apperrors.Wrap("aggregate.AggregatePaper", err)
		}
	}

	return res, nil
}

// mentionPair is one unordered co-occurring mention pair within a chunk.
type mentionPair struct {
	a, b models.EntityMention
}

// coOccurringPairs emits every distinct unordered pair of mentions
// within the same chunk (spec.md §4.13 step 2), in a deterministic
// order (sorted by entity id) so repeated runs over the same data merge
// triples identically regardless of map/slice iteration order.
func coOccurringPairs(mentions []models.EntityMention) []mentionPair {
	sorted := make([]models.EntityMention, len(mentions))
	copy(sorted, mentions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EntityID.String() < sorted[j].EntityID.String()
	})

	var pairs []mentionPair
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[i].EntityID == sorted[j].EntityID {
				continue
			}
			pairs = append(pairs, mentionPair{a: sorted[i], b: sorted[j]})
		}
	}
	return pairs
}

func (a *Aggregator) loadEntityTypes(ctx context.Context, seen map[ids.ID]struct{}) (map[ids.ID]models.EntityType, error) {
	out := make(map[ids.ID]models.EntityType, len(seen))
	for id := range seen {
		e, err := a.repo.GetEntity(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = e.EntityType
	}
	return out, nil
}

// mergeTriple averages the co-occurrence confidence (step 2) and merges
// the resulting KG-triple candidate into any existing current fact for
// the same (subject, predicate, object): `evidence_count += 1`,
// `confidence ← (old + new)/2` (spec.md §4.13 step 5). The subject is
// the member whose entity type comes first in the matching predicateTable
// key (the Gene of a Gene/Disease pair); pairs not in the table keep
// pair.a as subject.
func (a *Aggregator) mergeTriple(ctx context.Context, pair mentionPair, entityTypes map[ids.ID]models.EntityType) error {
	subj, obj := pair.a, pair.b
	if _, ok := predicateTable[[2]models.EntityType{entityTypes[obj.EntityID], entityTypes[subj.EntityID]}]; ok {
		subj, obj = obj, subj
	}
	predicate := predicateFor(entityTypes[subj.EntityID], entityTypes[obj.EntityID])
	newConfidence := averageConfidence(pair.a, pair.b)

	existing, err := a.repo.FindCurrentFact(ctx, subj.EntityID, predicate, obj.EntityID)
	if err != nil && apperrors.KindOf(err) != apperrors.KindNotFound {
		return err
	}

	if existing != nil {
		merged := *existing
		merged.ID = ids.Nil
		merged.Confidence = (existing.Confidence + newConfidence) / 2
		merged.EvidenceCount = existing.EvidenceCount + 1
		return a.kg.AssertFact(ctx, &merged)
	}

	fact := &models.KgFact{
		SubjectID:      subj.EntityID,
		Predicate:      predicate,
		ObjectID:       obj.EntityID,
		Confidence:     newConfidence,
		EvidenceType:   models.EvidenceTextMined,
		EvidenceWeight: kg.EvidenceWeightFor(models.EvidenceTextMined),
		EvidenceCount:  1,
	}
	return a.kg.AssertFact(ctx, fact)
}

func averageConfidence(a, b models.EntityMention) float64 {
	ca, cb := 1.0, 1.0
	if a.Confidence != nil {
		ca = *a.Confidence
	}
	if b.Confidence != nil {
		cb = *b.Confidence
	}
	return (ca + cb) / 2
}
