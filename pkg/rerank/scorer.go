package rerank

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Candidate represents a retrieved passage to be scored against a query.
type Candidate struct {
	// ID is the stable chunk identity (used to map results back).
	ID string
	// Content is the text scored against the query.
	Content string
	// Score is the initial vector-similarity score (kept for logging).
	Score float64
}

// Scored pairs a candidate with its cross-scorer relevance.
type Scored struct {
	Candidate Candidate
	// Relevance is the pairwise (query, passage) score. Higher = better.
	Relevance float64
}

// Scorer re-orders candidates by pairwise relevance to the query.
// Implementations must sort descending with a STABLE tie-break that
// preserves the incoming (similarity-rank) order, and must not block the
// caller's request goroutine with CPU-heavy work.
type Scorer interface {
	Score(ctx context.Context, query string, candidates []Candidate) ([]Scored, error)
}

// LexicalScorer is a CPU-bound pairwise scorer. Each (query, passage)
// pair is scored independently, so scoring fans out over a bounded set
// of workers; the fiber request goroutine only waits on the group.
//
// The score blends unigram coverage of the query with a bigram bonus:
// passages that contain the query's terms in the same order rank above
// passages that merely mention them.
type LexicalScorer struct {
	workers int
}

// NewLexicalScorer creates a scorer with the given worker-pool size.
// workers <= 0 falls back to a single worker.
func NewLexicalScorer(workers int) *LexicalScorer {
	if workers <= 0 {
		workers = 1
	}
	return &LexicalScorer{workers: workers}
}

var _ Scorer = &LexicalScorer{}

func (s *LexicalScorer) Score(ctx context.Context, query string, candidates []Candidate) ([]Scored, error) {
	if len(candidates) == 0 {
		return []Scored{}, nil
	}

	queryTerms := contentTerms(tokenize(query))
	queryBigrams := bigrams(queryTerms)

	// Scores land in fixed slots so the fan-out never races on ordering.
	scored := make([]Scored, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, cand := range candidates {
		i, cand := i, cand
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			scored[i] = Scored{
				Candidate: cand,
				Relevance: crossScore(queryTerms, queryBigrams, cand.Content),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Stable sort: ties keep the original similarity rank.
	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Relevance > scored[b].Relevance
	})

	return scored, nil
}

// crossScore is a pure function of the (query, passage) pair.
func crossScore(queryTerms []string, queryBigrams []string, passage string) float64 {
	if len(queryTerms) == 0 {
		return 0
	}

	passageTerms := tokenize(passage)
	termSet := make(map[string]bool, len(passageTerms))
	for _, t := range passageTerms {
		termSet[t] = true
	}

	matched := 0
	for _, t := range queryTerms {
		if termSet[t] {
			matched++
		}
	}
	coverage := float64(matched) / float64(len(queryTerms))

	var bigramBonus float64
	if len(queryBigrams) > 0 {
		passageBigramSet := make(map[string]bool)
		for _, b := range bigrams(passageTerms) {
			passageBigramSet[b] = true
		}
		matchedBigrams := 0
		for _, b := range queryBigrams {
			if passageBigramSet[b] {
				matchedBigrams++
			}
		}
		bigramBonus = 0.5 * float64(matchedBigrams) / float64(len(queryBigrams))
	}

	return coverage + bigramBonus
}

// stopwords are excluded from query terms so that passages sharing only
// function words with the query do not pick up coverage.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true,
	"at": true, "be": true, "by": true, "for": true, "from": true,
	"how": true, "in": true, "is": true, "it": true, "of": true,
	"on": true, "or": true, "that": true, "the": true, "to": true,
	"was": true, "were": true, "what": true, "when": true,
	"where": true, "which": true, "who": true, "why": true,
	"will": true, "with": true,
}

// contentTerms drops stopwords. A query made entirely of stopwords keeps
// its original terms so scoring still has something to match on.
func contentTerms(terms []string) []string {
	kept := make([]string, 0, len(terms))
	for _, t := range terms {
		if !stopwords[t] {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return terms
	}
	return kept
}

func tokenize(text string) []string {
	var terms []string
	var current []rune
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			current = append(current, r)
		case r >= 'A' && r <= 'Z':
			current = append(current, r+('a'-'A'))
		default:
			if len(current) > 0 {
				terms = append(terms, string(current))
				current = nil
			}
		}
	}
	if len(current) > 0 {
		terms = append(terms, string(current))
	}
	return terms
}

func bigrams(terms []string) []string {
	if len(terms) < 2 {
		return nil
	}
	out := make([]string, 0, len(terms)-1)
	for i := 0; i+1 < len(terms); i++ {
		out = append(out, terms[i]+" "+terms[i+1])
	}
	return out
}
