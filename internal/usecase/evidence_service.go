package usecase

import (
	"context"
	"log"
	"strings"

	"github.com/quizpilot/agent/internal/domain"
)

// questionStopWords carry no retrieval signal and are dropped from queries.
var questionStopWords = map[string]bool{
	"which": true, "what": true, "who": true,
	"where": true, "when": true, "how": true,
}

// stopPhrases are removed before word-level filtering.
var stopPhrases = []string{"the following"}

// EvidenceServiceConfig holds the retrieval knobs.
type EvidenceServiceConfig struct {
	// Sites is the educational-domain restriction list for the second pass.
	Sites []string
	// GeneralResultCap bounds the general search pass.
	GeneralResultCap int
	// PerSiteResultCap bounds each site-restricted pass.
	PerSiteResultCap int
}

// EvidenceService gathers ranked text snippets about a question from the
// web: one general search pass plus one pass per configured educational
// domain, every hit fetched and reduced to a snippet.
type EvidenceService struct {
	source   domain.EvidenceSource
	sites    []string
	general  int
	perSite  int
	failures map[string]int
}

// NewEvidenceService creates the gatherer over a search/fetch source.
func NewEvidenceService(source domain.EvidenceSource, config EvidenceServiceConfig) *EvidenceService {
	general := config.GeneralResultCap
	if general <= 0 {
		general = 5
	}
	perSite := config.PerSiteResultCap
	if perSite <= 0 {
		perSite = 2
	}
	return &EvidenceService{
		source:   source,
		sites:    config.Sites,
		general:  general,
		perSite:  perSite,
		failures: make(map[string]int),
	}
}

// Gather retrieves evidence snippets for the question. Individual search or
// fetch failures are logged, counted and skipped; an all-failed run returns
// an empty slice rather than an error so scoring can still proceed.
func (s *EvidenceService) Gather(ctx context.Context, question string, options []string) []domain.Snippet {
	query := BuildQuery(question, options)
	if query == "" {
		return nil
	}

	seen := make(map[string]bool)
	var hits []domain.SearchResult

	add := func(results []domain.SearchResult) {
		for _, r := range results {
			if r.URL == "" || seen[r.URL] {
				continue
			}
			seen[r.URL] = true
			hits = append(hits, r)
		}
	}

	// Pass one: general web search.
	results, err := s.source.Search(ctx, query, s.general)
	if err != nil {
		s.failures["search:general"]++
		log.Printf("[EVIDENCE] general search failed: %v", err)
	} else {
		add(results)
	}

	// Pass two: one restricted search per educational domain. A failed site
	// never aborts the remaining ones.
	for _, site := range s.sites {
		results, err := s.source.Search(ctx, "site:"+site+" "+query, s.perSite)
		if err != nil {
			s.failures["search:"+site]++
			log.Printf("[EVIDENCE] site search %s failed: %v", site, err)
			continue
		}
		add(results)
	}

	var snippets []domain.Snippet
	for _, hit := range hits {
		snippet, err := s.source.FetchPage(ctx, hit.URL)
		if err != nil {
			s.failures["fetch"]++
			log.Printf("[EVIDENCE] fetch %s failed: %v", hit.URL, err)
			continue
		}
		if snippet.Title == "" {
			snippet.Title = hit.Title
		}
		snippets = append(snippets, snippet)
	}

	log.Printf("[EVIDENCE] query %q: %d hits, %d snippets", query, len(hits), len(snippets))
	return snippets
}

// FailureCounts reports per-source retrieval failures accumulated so far.
func (s *EvidenceService) FailureCounts() map[string]int {
	out := make(map[string]int, len(s.failures))
	for k, v := range s.failures {
		out[k] = v
	}
	return out
}

// BuildQuery constructs the retrieval query: the normalized question with
// the option texts appended to bias results toward pages mentioning them.
func BuildQuery(question string, options []string) string {
	normalized := NormalizeQuestion(question)
	parts := make([]string, 0, len(options)+1)
	if normalized != "" {
		parts = append(parts, normalized)
	}
	for _, opt := range options {
		if opt = strings.TrimSpace(opt); opt != "" {
			parts = append(parts, opt)
		}
	}
	return strings.Join(parts, " ")
}

// NormalizeQuestion lowercases, collapses whitespace, strips trailing
// punctuation and removes interrogative stop words. Normalization is
// idempotent: applying it to its own output is a no-op.
func NormalizeQuestion(question string) string {
	q := strings.ToLower(strings.TrimSpace(question))
	q = strings.TrimRight(q, "?!.")
	for _, phrase := range stopPhrases {
		q = strings.ReplaceAll(q, phrase, " ")
	}

	var kept []string
	for _, word := range strings.Fields(q) {
		if questionStopWords[word] {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}
