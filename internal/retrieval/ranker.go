package retrieval

import (
	"math"
	"sort"
	"time"

	"github.com/Peleke/MindMirror-sub002/internal/vectorstore"
)

// Ranking weights. The final score blends raw cosine similarity with a
// recency bonus for fresh journal entries and a flat bonus for personal
// content. Shared knowledge never receives a recency bonus: source
// documents do not age the way journal entries do.
const (
	similarityWeight = 0.7
	personalBonus    = 0.1
	recencyMaxBonus  = 0.2
	recencyWindow    = 30 // days until the recency bonus decays to zero
)

// Rank scores and sorts merged search results.
//
// For each result:
//
//	finalScore = 0.7*rawScore + recencyBonus + personalBonus
//
// Rank is total and pure: it never fails, makes no external calls, and
// returns new result values instead of mutating its input. Malformed or
// missing timestamps simply earn no recency bonus. The sort is stable, so
// equal scores preserve their input order and the output is reproducible
// for a given input ordering.
func Rank(results []vectorstore.SearchResult, now time.Time) []vectorstore.SearchResult {
	ranked := make([]vectorstore.SearchResult, len(results))
	for i, r := range results {
		score := similarityWeight * r.Score
		if r.IsPersonalContent() {
			score += personalBonus
			score += recencyBonus(r, now)
		}
		ranked[i] = vectorstore.SearchResult{
			ID:      r.ID,
			Score:   score,
			Payload: r.Payload,
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// recencyBonus linearly decays from 0.2 for an entry written today to 0.0
// at 30+ days old. Missing or unparsable timestamps earn zero.
func recencyBonus(r vectorstore.SearchResult, now time.Time) float64 {
	raw, ok := r.Payload[vectorstore.PayloadTimestamp].(string)
	if !ok {
		return 0
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return 0
	}

	daysAgo := math.Floor(now.Sub(ts).Hours() / 24)
	if daysAgo < 0 {
		daysAgo = 0
	}
	bonus := recencyMaxBonus * (1 - daysAgo/recencyWindow)
	if bonus < 0 {
		return 0
	}
	return bonus
}
