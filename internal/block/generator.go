package block

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/mfukuda/studyset/internal/card"
)

// ErrInvalidBlockSize is returned for a non-positive block size.
var ErrInvalidBlockSize = errors.New("block size must be positive")

// Request describes the constraints for one study block.
type Request struct {
	BlockSize        int
	Subject          *card.Subject
	IncludeNew       bool
	IncludeReview    bool
	TargetDifficulty int // 0 = no target
}

// Config tunes block assembly.
type Config struct {
	// MaxTopicShare bounds the fraction of the block that any single
	// topic may contribute when new cards are added.
	MaxTopicShare float64
	// AccuracyBandLow and AccuracyBandHigh bound the projected accuracy
	// of the assembled block; compositions outside the band trigger
	// difficulty swaps before finalizing.
	AccuracyBandLow  float64
	AccuracyBandHigh float64
}

// DefaultConfig returns the documented defaults: at most 40% of a block
// from one topic, and a 70-85% projected accuracy band.
func DefaultConfig() Config {
	return Config{
		MaxTopicShare:    0.4,
		AccuracyBandLow:  0.70,
		AccuracyBandHigh: 0.85,
	}
}

// expectedAccuracy estimates recall probability per difficulty level.
// Derived from the 70-85% target band across the 1-5 scale.
var expectedAccuracy = [card.MaxDifficulty + 1]float64{0, 0.95, 0.88, 0.80, 0.72, 0.65}

// Generator assembles bounded, deduplicated, topic-balanced study blocks.
// Generation is read-only over its pool snapshot and fully deterministic:
// equal inputs produce equal blocks.
type Generator struct {
	scorer *Scorer
	cfg    Config
}

// NewGenerator creates a Generator.
func NewGenerator(scorer *Scorer, cfg Config) *Generator {
	if cfg.MaxTopicShare <= 0 || cfg.MaxTopicShare > 1 {
		cfg.MaxTopicShare = DefaultConfig().MaxTopicShare
	}
	if cfg.AccuracyBandLow <= 0 || cfg.AccuracyBandHigh <= cfg.AccuracyBandLow {
		cfg.AccuracyBandLow = DefaultConfig().AccuracyBandLow
		cfg.AccuracyBandHigh = DefaultConfig().AccuracyBandHigh
	}
	return &Generator{scorer: scorer, cfg: cfg}
}

type scoredCard struct {
	card  card.Card
	score float64
	index int
}

// Generate builds an ordered block of at most req.BlockSize cards from
// the pool. A pool smaller than the requested size yields a short block,
// which is not an error.
func (g *Generator) Generate(pool []card.Card, today time.Time, req Request) ([]card.Card, error) {
	if req.BlockSize <= 0 {
		return nil, ErrInvalidBlockSize
	}

	due, fresh := g.partition(pool, today, req)

	selected := g.selectDue(due, today, req)
	remainingDue := due[min(len(selected), len(due)):]

	var remainingFresh []card.Card
	if len(selected) < req.BlockSize && req.IncludeNew {
		var picks []card.Card
		picks, remainingFresh = g.selectNew(fresh, selected, req)
		selected = append(selected, picks...)
	} else {
		remainingFresh = fresh
	}

	leftovers := append(append([]card.Card{}, remainingDue...), remainingFresh...)
	selected = g.balanceAccuracy(selected, leftovers)

	return dedupe(selected), nil
}

// partition splits the pool into due and new candidates, applying the
// subject filter and dropping archived cards and anything not yet due.
func (g *Generator) partition(pool []card.Card, today time.Time, req Request) (due, fresh []card.Card) {
	for _, c := range pool {
		if c.Archived {
			continue
		}
		if req.Subject != nil && c.Subject != *req.Subject {
			continue
		}
		switch {
		case c.IsNew():
			if req.IncludeNew {
				fresh = append(fresh, c)
			}
		case c.IsDue(today):
			if req.IncludeReview {
				due = append(due, c)
			}
		}
	}
	return due, fresh
}

// selectDue scores the due candidates and takes the most urgent ones.
// Ties break on earliest due date, then fewest repetitions, then pool
// order; the stable sort keeps the last tie-break deterministic.
// The due slice is reordered in place so leftovers follow selection order.
func (g *Generator) selectDue(due []card.Card, today time.Time, req Request) []card.Card {
	scored := make([]scoredCard, len(due))
	for i, c := range due {
		scored[i] = scoredCard{card: c, score: g.scorer.Score(c, today, req.TargetDifficulty), index: i}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		di, dj := scored[i].card.DueDate, scored[j].card.DueDate
		if di != nil && dj != nil && !di.Equal(*dj) {
			return di.Before(*dj)
		}
		return scored[i].card.Repetitions < scored[j].card.Repetitions
	})

	for i, sc := range scored {
		due[i] = sc.card
	}

	n := min(req.BlockSize, len(due))
	return append([]card.Card{}, due[:n]...)
}

// selectNew fills remaining capacity with never-reviewed cards using a
// round-robin over topics, so no single topic exceeds its share of the
// block. Within a topic, better difficulty alignment goes first.
func (g *Generator) selectNew(fresh, alreadySelected []card.Card, req Request) (picks, leftovers []card.Card) {
	capacity := req.BlockSize - len(alreadySelected)
	if capacity <= 0 {
		return nil, fresh
	}

	maxPerTopic := int(math.Ceil(g.cfg.MaxTopicShare * float64(req.BlockSize)))
	if maxPerTopic < 1 {
		maxPerTopic = 1
	}

	topicCounts := make(map[card.Topic]int)
	for _, c := range alreadySelected {
		topicCounts[c.Topic]++
	}

	byTopic := make(map[card.Topic][]card.Card)
	var topics []card.Topic
	for _, c := range fresh {
		if _, seen := byTopic[c.Topic]; !seen {
			topics = append(topics, c.Topic)
		}
		byTopic[c.Topic] = append(byTopic[c.Topic], c)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i] < topics[j] })
	for _, topic := range topics {
		cards := byTopic[topic]
		sort.SliceStable(cards, func(i, j int) bool {
			ai := DifficultyAlignment(cards[i].Difficulty, req.TargetDifficulty)
			aj := DifficultyAlignment(cards[j].Difficulty, req.TargetDifficulty)
			if ai != aj {
				return ai > aj
			}
			return cards[i].ID < cards[j].ID
		})
	}

	offsets := make(map[card.Topic]int)
	for len(picks) < capacity {
		progressed := false
		for _, topic := range topics {
			if len(picks) >= capacity {
				break
			}
			if topicCounts[topic] >= maxPerTopic {
				continue
			}
			cards := byTopic[topic]
			if offsets[topic] >= len(cards) {
				continue
			}
			picks = append(picks, cards[offsets[topic]])
			offsets[topic]++
			topicCounts[topic]++
			progressed = true
		}
		if !progressed {
			break
		}
	}

	for _, topic := range topics {
		leftovers = append(leftovers, byTopic[topic][offsets[topic]:]...)
	}
	return picks, leftovers
}

// balanceAccuracy nudges the block's projected accuracy into the target
// band by swapping the hardest selected card for an easier leftover (or
// the easiest for a harder one). Swaps stop as soon as the projection is
// in band or no swap can improve it.
func (g *Generator) balanceAccuracy(selected, leftovers []card.Card) []card.Card {
	if len(selected) == 0 || len(leftovers) == 0 {
		return selected
	}

	for range selected {
		projected := projectedAccuracy(selected)
		switch {
		case projected < g.cfg.AccuracyBandLow:
			if !swapForDifficulty(selected, leftovers, true) {
				return selected
			}
		case projected > g.cfg.AccuracyBandHigh:
			if !swapForDifficulty(selected, leftovers, false) {
				return selected
			}
		default:
			return selected
		}
	}
	return selected
}

// swapForDifficulty exchanges one selected card with a leftover. With
// easier=true the hardest selected card is replaced by the easiest
// leftover; otherwise the easiest selected by the hardest leftover.
// Returns false when no exchange would move the projection.
func swapForDifficulty(selected, leftovers []card.Card, easier bool) bool {
	selIdx, leftIdx := -1, -1
	for i, c := range selected {
		if selIdx == -1 {
			selIdx = i
			continue
		}
		if easier && c.Difficulty > selected[selIdx].Difficulty {
			selIdx = i
		}
		if !easier && c.Difficulty < selected[selIdx].Difficulty {
			selIdx = i
		}
	}
	for i, c := range leftovers {
		if leftIdx == -1 {
			leftIdx = i
			continue
		}
		if easier && c.Difficulty < leftovers[leftIdx].Difficulty {
			leftIdx = i
		}
		if !easier && c.Difficulty > leftovers[leftIdx].Difficulty {
			leftIdx = i
		}
	}
	if selIdx == -1 || leftIdx == -1 {
		return false
	}

	improves := (easier && leftovers[leftIdx].Difficulty < selected[selIdx].Difficulty) ||
		(!easier && leftovers[leftIdx].Difficulty > selected[selIdx].Difficulty)
	if !improves {
		return false
	}

	selected[selIdx], leftovers[leftIdx] = leftovers[leftIdx], selected[selIdx]
	return true
}

func projectedAccuracy(cards []card.Card) float64 {
	if len(cards) == 0 {
		return 0
	}
	var sum float64
	for _, c := range cards {
		d := c.Difficulty
		if d < card.MinDifficulty {
			d = card.MinDifficulty
		}
		if d > card.MaxDifficulty {
			d = card.MaxDifficulty
		}
		sum += expectedAccuracy[d]
	}
	return sum / float64(len(cards))
}

func dedupe(cards []card.Card) []card.Card {
	seen := make(map[int64]struct{}, len(cards))
	out := cards[:0]
	for _, c := range cards {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}
