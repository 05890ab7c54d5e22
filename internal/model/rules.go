package model

import (
	"math"
	"sort"
	"strings"
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/jonesrussell/subsift/internal/domain"
)

// RulesName identifies the keyword-rule model.
const RulesName = "keyword-rules"

// DefaultKeywordsPerLabel is how many distinctive keywords each label
// contributes to the matcher.
const DefaultKeywordsPerLabel = 50

// smoothing for the log-odds keyword score.
const keywordScoreSmoothing = 1.0

// RuleClassifier predicts by counting keyword hits per label. Keywords are
// the most label-distinctive training tokens (by smoothed log-odds),
// compiled into a single Aho-Corasick automaton for one-pass matching.
// Ties and keyword-free titles fall back to the majority label.
type RuleClassifier struct {
	// KeywordsPerLabel bounds each label's keyword list.
	KeywordsPerLabel int `json:"keywords_per_label"`
	// Keywords maps label -> distinctive tokens.
	Keywords map[string][]string `json:"keywords"`
	// Fallback is the majority training label.
	Fallback string `json:"fallback"`

	mu       sync.Mutex
	matcher  *ahocorasick.Matcher
	patterns []string            // padded keywords, automaton order
	byIndex  map[int]keywordRule // pattern index -> owning label
}

type keywordRule struct {
	label   string
	keyword string
}

// NewRuleClassifier creates an unfitted rule model.
func NewRuleClassifier(keywordsPerLabel int) *RuleClassifier {
	if keywordsPerLabel <= 0 {
		keywordsPerLabel = DefaultKeywordsPerLabel
	}
	return &RuleClassifier{KeywordsPerLabel: keywordsPerLabel}
}

// Name identifies the model.
func (r *RuleClassifier) Name() string { return RulesName }

// Fit selects per-label keywords and builds the automaton.
func (r *RuleClassifier) Fit(samples []Sample) error {
	if len(samples) == 0 {
		return ErrNoSamples
	}
	labels := labelSet(samples)
	if len(labels) < 2 {
		return ErrSingleClass
	}

	// Token document frequency per label.
	perLabel := make(map[string]map[string]int, len(labels))
	labelDocs := make(map[string]int, len(labels))
	for _, label := range labels {
		perLabel[label] = make(map[string]int)
	}
	for i := range samples {
		label := samples[i].Label
		labelDocs[label]++
		seen := make(map[string]struct{}, len(samples[i].Tokens))
		for _, token := range samples[i].Tokens {
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			perLabel[label][token]++
		}
	}

	r.Keywords = make(map[string][]string, len(labels))
	for _, label := range labels {
		r.Keywords[label] = topKeywords(label, labels, perLabel, labelDocs, r.KeywordsPerLabel)
	}
	r.Fallback = majorityLabel(samples)

	r.mu.Lock()
	r.compileLocked()
	r.mu.Unlock()
	return nil
}

// topKeywords ranks tokens for one label by smoothed log-odds of appearing
// in that label versus all others.
func topKeywords(
	label string,
	labels []string,
	perLabel map[string]map[string]int,
	labelDocs map[string]int,
	limit int,
) []string {
	otherDocs := 0
	for _, other := range labels {
		if other != label {
			otherDocs += labelDocs[other]
		}
	}

	type scored struct {
		token string
		score float64
	}
	var candidates []scored
	for token, inLabel := range perLabel[label] {
		inOthers := 0
		for _, other := range labels {
			if other != label {
				inOthers += perLabel[other][token]
			}
		}
		pIn := (float64(inLabel) + keywordScoreSmoothing) / (float64(labelDocs[label]) + 2*keywordScoreSmoothing)
		pOut := (float64(inOthers) + keywordScoreSmoothing) / (float64(otherDocs) + 2*keywordScoreSmoothing)
		score := math.Log(pIn / pOut)
		if score <= 0 {
			continue // token is not distinctive for this label
		}
		candidates = append(candidates, scored{token: token, score: score})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].token < candidates[j].token
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	keywords := make([]string, len(candidates))
	for i, c := range candidates {
		keywords[i] = c.token
	}
	return keywords
}

// compileLocked rebuilds the Aho-Corasick automaton from Keywords.
// Patterns are space-padded so matches respect token boundaries.
func (r *RuleClassifier) compileLocked() {
	r.patterns = nil
	r.byIndex = make(map[int]keywordRule)

	labels := make([]string, 0, len(r.Keywords))
	for label := range r.Keywords {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		for _, keyword := range r.Keywords[label] {
			r.byIndex[len(r.patterns)] = keywordRule{label: label, keyword: keyword}
			r.patterns = append(r.patterns, " "+keyword+" ")
		}
	}

	if len(r.patterns) > 0 {
		r.matcher = ahocorasick.NewStringMatcher(r.patterns)
	} else {
		r.matcher = nil
	}
}

// Predict counts keyword hits per label over the token stream.
func (r *RuleClassifier) Predict(sample Sample) (*domain.Prediction, error) {
	if r.Fallback == "" {
		return nil, ErrNotFitted
	}

	r.mu.Lock()
	// Rebuild after JSON load, where only Keywords and Fallback survive.
	if r.matcher == nil && len(r.Keywords) > 0 && r.byIndex == nil {
		r.compileLocked()
	}
	matcher := r.matcher
	r.mu.Unlock()

	scores := make(map[string]float64, len(r.Keywords))
	for label := range r.Keywords {
		scores[label] = 0
	}

	if matcher != nil && len(sample.Tokens) > 0 {
		text := " " + strings.Join(sample.Tokens, " ") + " "
		for _, idx := range matcher.Match([]byte(text)) {
			if rule, ok := r.byIndex[idx]; ok {
				scores[rule.label]++
			}
		}
	}

	best := r.Fallback
	bestScore := 0.0
	tie := true
	for label, score := range scores {
		switch {
		case score > bestScore:
			best = label
			bestScore = score
			tie = false
		case score == bestScore && label != best:
			tie = true
		}
	}
	if tie || bestScore == 0 {
		best = r.Fallback
	}

	return &domain.Prediction{
		Label:  best,
		Scores: scores,
		Model:  RulesName,
	}, nil
}
