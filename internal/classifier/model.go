// Package classifier assigns a claim type and priority with a confidence
// score. The statistical model is fitted once, at startup, from labeled
// descriptions carried in configuration; the pipeline only queries it.
package classifier

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	cfg "github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/config"
)

// Model is a frequency-weighted multinomial Naive Bayes classifier over
// bag-of-terms features. Immutable once fitted.
type Model struct {
	classes  []string // tie-break order
	logPrior map[string]float64
	logProb  map[string]map[string]float64
	unseen   map[string]float64 // smoothed likelihood for out-of-vocabulary terms
}

// Fit trains a model from labeled examples. classOrder fixes the tie-break
// ordering between classes with equal probability; labels missing from it
// are appended alphabetically.
func Fit(examples []cfg.TrainingExample, classOrder []string) (*Model, error) {
	if len(examples) < 2 {
		return nil, fmt.Errorf("need at least 2 training examples, got %d", len(examples))
	}

	termCounts := make(map[string]map[string]int)
	totals := make(map[string]int)
	docs := make(map[string]int)
	vocab := make(map[string]bool)

	for _, ex := range examples {
		label := strings.ToLower(ex.ClaimType)
		if termCounts[label] == nil {
			termCounts[label] = make(map[string]int)
		}
		docs[label]++
		for _, term := range Tokenize(ex.Description) {
			termCounts[label][term]++
			totals[label]++
			vocab[term] = true
		}
	}

	classes := orderClasses(docs, classOrder)

	m := &Model{
		classes:  classes,
		logPrior: make(map[string]float64, len(classes)),
		logProb:  make(map[string]map[string]float64, len(classes)),
		unseen:   make(map[string]float64, len(classes)),
	}

	v := float64(len(vocab))
	for _, class := range classes {
		m.logPrior[class] = math.Log(float64(docs[class]) / float64(len(examples)))
		m.unseen[class] = math.Log(1.0 / (float64(totals[class]) + v))

		probs := make(map[string]float64, len(termCounts[class]))
		for term, count := range termCounts[class] {
			probs[term] = math.Log((float64(count) + 1.0) / (float64(totals[class]) + v))
		}
		m.logProb[class] = probs
	}

	return m, nil
}

// Classes returns the classes in tie-break order.
func (m *Model) Classes() []string {
	return m.classes
}

// Distribution returns a normalized probability distribution over claim
// types for the given text.
func (m *Model) Distribution(text string) map[string]float64 {
	terms := Tokenize(text)

	scores := make(map[string]float64, len(m.classes))
	maxScore := math.Inf(-1)
	for _, class := range m.classes {
		score := m.logPrior[class]
		for _, term := range terms {
			if lp, ok := m.logProb[class][term]; ok {
				score += lp
			} else {
				score += m.unseen[class]
			}
		}
		scores[class] = score
		if score > maxScore {
			maxScore = score
		}
	}

	// Log scores to probabilities, shifted by the max for stability.
	// Summation follows the fixed class order: float addition is not
	// associative, so ranging over the map would make the normalized
	// values vary between calls.
	sum := 0.0
	for _, class := range m.classes {
		p := math.Exp(scores[class] - maxScore)
		scores[class] = p
		sum += p
	}
	for _, class := range m.classes {
		scores[class] /= sum
	}

	return scores
}

// Top returns the most probable class and its probability mass. Ties are
// broken by the fixed class order, never arbitrarily.
func (m *Model) Top(dist map[string]float64) (string, float64) {
	best := ""
	bestP := math.Inf(-1)
	for _, class := range m.classes {
		if p := dist[class]; p > bestP {
			best = class
			bestP = p
		}
	}
	return best, bestP
}

// Tokenize lowercases and splits text on non-alphanumeric runs.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func orderClasses(docs map[string]int, classOrder []string) []string {
	seen := make(map[string]bool, len(docs))
	var classes []string
	for _, class := range classOrder {
		class = strings.ToLower(class)
		if docs[class] > 0 && !seen[class] {
			classes = append(classes, class)
			seen[class] = true
		}
	}

	var extra []string
	for class := range docs {
		if !seen[class] {
			extra = append(extra, class)
		}
	}
	sort.Strings(extra)
	return append(classes, extra...)
}
