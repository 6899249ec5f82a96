// Package kg wraps the repository's append-only knowledge-graph fact
// store with supersession semantics and the mean-confidence aggregation
// the ranker's confidence-adjustment step consumes.
package kg

import (
	"context"

	"github.com/nishad/oncotarget/internal/apperrors"
	"github.com/nishad/oncotarget/internal/ids"
	"github.com/nishad/oncotarget/internal/models"
	"github.com/nishad/oncotarget/internal/ranker"
	"github.com/nishad/oncotarget/internal/repository"
)

// Store is the knowledge graph's write/read surface over a repository.
type Store struct {
	repo *repository.DB
}

// New wraps repo as a knowledge graph store.
func New(repo *repository.DB) *Store {
	return &Store{repo: repo}
}

// AssertFact records a new fact. If a current fact already relates the
// same (subject, predicate, object), it is first superseded — kg_facts
// stays append-only, never rewritten (spec.md §4.12).
func (s *Store) AssertFact(ctx context.Context, f *models.KgFact) error {
	existing, err := s.repo.FindCurrentFact(ctx, f.SubjectID, f.Predicate, f.ObjectID)
	if err != nil && apperrors.KindOf(err) != apperrors.KindNotFound {
		return apperrors.Wrap("kg.AssertFact", err)
	}
	if existing != nil {
		if err := s.repo.SupersedeFact(ctx, existing.ID); err != nil {
			return apperrors.Wrap("kg.AssertFact", err)
		}
	}
	return apperrors.Wrap("kg.AssertFact", s.repo.InsertFact(ctx, f))
}

// CurrentFactsBetween returns every unsuperseded fact directly relating
// subjectID and objectID.
func (s *Store) CurrentFactsBetween(ctx context.Context, subjectID, objectID ids.ID) ([]models.KgFact, error) {
	return s.repo.ListCurrentFactsBetween(ctx, subjectID, objectID)
}

// CurrentFacts returns every unsuperseded fact touching id as either
// subject or object.
func (s *Store) CurrentFacts(ctx context.Context, id ids.ID) ([]models.KgFact, error) {
	return s.repo.ListCurrentFacts(ctx, id)
}

// MeanConfidence computes the ranker's confidence-adjustment factor Ĉ
// for a (gene, cancer) pair: the sample-size-weighted mean of
// confidence × evidence_weight across current supporting facts, falling
// back to an unweighted arithmetic mean when no fact in the set carries
// a sample size (Open Question #3, resolved in DESIGN.md).
//
// Returns 0 when there is no current evidence relating the pair — the
// ranker then treats the pair as wholly unsupported.
func (s *Store) MeanConfidence(ctx context.Context, geneID, cancerID ids.ID) (float64, error) {
	facts, err := s.repo.ListCurrentFactsBetween(ctx, geneID, cancerID)
	if err != nil {
		return 0, apperrors.Wrap("kg.MeanConfidence", err)
	}
	return meanConfidence(facts), nil
}

func meanConfidence(facts []models.KgFact) float64 {
	if len(facts) == 0 {
		return 0
	}

	hasSampleSize := false
	for _, f := range facts {
		if f.SampleSize != nil && *f.SampleSize > 0 {
			hasSampleSize = true
			break
		}
	}

	if !hasSampleSize {
		var sum float64
		for _, f := range facts {
			sum += f.Confidence * f.EvidenceWeight
		}
		return sum / float64(len(facts))
	}

	var weightedSum, totalWeight float64
	for _, f := range facts {
		weight := 1.0
		if f.SampleSize != nil && *f.SampleSize > 0 {
			weight = float64(*f.SampleSize)
		}
		weightedSum += f.Confidence * f.EvidenceWeight * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 0
	}
	return weightedSum / totalWeight
}

// EvidenceWeightFor returns the fixed base weight for an evidence type,
// delegating to the ranker's weight table so the two packages agree on a
// single source of truth without ranker importing kg.
func EvidenceWeightFor(t models.EvidenceType) float64 {
	return ranker.EvidenceBaseWeight(t)
}
