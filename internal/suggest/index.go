// Package suggest ranks catalogued titles against an unknown title so broken
// references can offer "did you mean" hints.
package suggest

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/morozRed/dfnref/internal/catalog"
	"github.com/morozRed/dfnref/internal/titleindex"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

type Document struct {
	Title  string
	Length int
	Terms  map[string]int
}

type Index struct {
	DocumentCount int
	AvgDocLength  float64
	DocFreq       map[string]int
	Documents     []Document
}

type Result struct {
	Title string
	Score float64
}

// Build indexes every title of cat, weighting title tokens above the tokens
// of the scopes the title is defined for.
func Build(cat *catalog.Catalog) *Index {
	docFreq := make(map[string]int)
	documents := make([]Document, 0, cat.Len())
	totalLength := 0

	for _, title := range cat.Titles() {
		terms := make(map[string]int)
		addWeighted(terms, title, 4)
		for _, scope := range cat.Scopes(title) {
			addWeighted(terms, scope, 1)
		}
		length := 0
		for _, count := range terms {
			length += count
		}
		if length == 0 {
			continue
		}

		documents = append(documents, Document{Title: title, Length: length, Terms: terms})
		totalLength += length
		for term := range terms {
			docFreq[term]++
		}
	}

	sort.Slice(documents, func(i, j int) bool {
		return documents[i].Title < documents[j].Title
	})

	avgDocLength := 0.0
	if len(documents) > 0 {
		avgDocLength = float64(totalLength) / float64(len(documents))
	}

	return &Index{
		DocumentCount: len(documents),
		AvgDocLength:  avgDocLength,
		DocFreq:       docFreq,
		Documents:     documents,
	}
}

// Suggest returns up to limit titles close to query, best first. The query
// title itself is never suggested.
func (idx *Index) Suggest(query string, limit int) []string {
	results := Search(idx, query, limit+1)
	out := make([]string, 0, len(results))
	self := titleindex.Fold(query)
	for _, result := range results {
		if titleindex.Fold(result.Title) == self {
			continue
		}
		out = append(out, result.Title)
		if len(out) == limit {
			break
		}
	}
	return out
}

// Search scores documents with BM25 and falls back to edit distance when no
// token matches.
func Search(index *Index, query string, limit int) []Result {
	if index == nil || len(index.Documents) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = 10
	}

	queryTerms := tokenize(query)
	if len(queryTerms) == 0 {
		return nil
	}

	seenTerms := make(map[string]bool, len(queryTerms))
	uniqueTerms := make([]string, 0, len(queryTerms))
	for _, term := range queryTerms {
		if seenTerms[term] {
			continue
		}
		seenTerms[term] = true
		uniqueTerms = append(uniqueTerms, term)
	}

	k1 := 1.2
	b := 0.75
	n := float64(index.DocumentCount)
	avgLen := index.AvgDocLength
	if avgLen <= 0 {
		avgLen = 1
	}

	results := make([]Result, 0)
	for _, doc := range index.Documents {
		score := 0.0
		docLen := float64(doc.Length)
		for _, term := range uniqueTerms {
			tf := float64(doc.Terms[term])
			if tf <= 0 {
				continue
			}
			df := float64(index.DocFreq[term])
			if df <= 0 {
				continue
			}
			idf := math.Log(1.0 + ((n - df + 0.5) / (df + 0.5)))
			score += idf * (tf * (k1 + 1.0)) / (tf + k1*(1.0-b+b*(docLen/avgLen)))
		}
		if score > 0 {
			results = append(results, Result{Title: doc.Title, Score: score})
		}
	}

	sortResults(results)
	if len(results) > limit {
		results = results[:limit]
	}
	if len(results) == 0 {
		return fuzzyTitleFallback(index.Documents, query, limit)
	}
	return results
}

func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Title < results[j].Title
	})
}

func addWeighted(terms map[string]int, value string, weight int) {
	for _, token := range tokenize(value) {
		terms[token] += weight
	}
}

func tokenize(value string) []string {
	value = titleindex.Fold(value)
	if value == "" {
		return nil
	}
	return tokenPattern.FindAllString(value, -1)
}

func fuzzyTitleFallback(documents []Document, query string, limit int) []Result {
	needle := strings.Join(tokenize(query), "")
	if needle == "" {
		return nil
	}

	results := make([]Result, 0)
	for _, doc := range documents {
		candidate := strings.Join(tokenize(doc.Title), "")
		if candidate == "" {
			continue
		}
		distance := levenshteinDistance([]rune(needle), []rune(candidate))
		threshold := len([]rune(candidate)) / 3
		if threshold < 2 {
			threshold = 2
		}
		if distance > threshold {
			continue
		}
		results = append(results, Result{Title: doc.Title, Score: 1.0 / float64(1+distance)})
	}

	sortResults(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func levenshteinDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		current := make([]int, len(b)+1)
		current[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			current[j] = min(current[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev = current
	}
	return prev[len(b)]
}
