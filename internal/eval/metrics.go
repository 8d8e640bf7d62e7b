package eval

import "github.com/hc-tap/clinspan/pkg/types/entity"

// TypeScores bundles confusion counts with the derived scores for one
// entity type.
type TypeScores struct {
	Counts
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Block is one of the four metric blocks (strict/intersection crossed with
// exact/relaxed).  Micro scores sum tp/fp/fn across the scored types before
// dividing; macro F1 averages the per-type F1 values.
type Block struct {
	MicroPrecision float64               `json:"micro_precision"`
	MicroRecall    float64               `json:"micro_recall"`
	MicroF1        float64               `json:"micro_f1"`
	MacroF1        float64               `json:"macro_f1"`
	PerType        map[string]TypeScores `json:"per_type"`
}

// Coverage distinguishes "the extractor is imprecise" from "the extractor
// never saw these notes".
type Coverage struct {
	GoldItems            int `json:"gold_items"`
	PredItems            int `json:"pred_items"`
	GoldNotes            int `json:"gold_notes"`
	PredNotes            int `json:"pred_notes"`
	GoldOutsidePredNotes int `json:"gold_outside_pred_notes"`
}

// precisionRecallF1 derives the three scores from raw counts, reporting 0
// on every zero denominator instead of failing.
func precisionRecallF1(c Counts) (p, r, f1 float64) {
	if c.TP+c.FP > 0 {
		p = float64(c.TP) / float64(c.TP+c.FP)
	}
	if c.TP+c.FN > 0 {
		r = float64(c.TP) / float64(c.TP+c.FN)
	}
	if p+r > 0 {
		f1 = 2 * p * r / (p + r)
	}
	return p, r, f1
}

// buildBlock aggregates per-type confusion counts into one metric block.
func buildBlock(counts map[entity.Type]*Counts) *Block {
	block := &Block{PerType: make(map[string]TypeScores, len(counts))}
	var micro Counts
	var macroSum float64
	for _, t := range entity.ScoredTypes {
		c := counts[t]
		if c == nil {
			c = &Counts{}
		}
		p, r, f1 := precisionRecallF1(*c)
		block.PerType[string(t)] = TypeScores{Counts: *c, Precision: p, Recall: r, F1: f1}
		micro.TP += c.TP
		micro.FP += c.FP
		micro.FN += c.FN
		macroSum += f1
	}
	block.MicroPrecision, block.MicroRecall, block.MicroF1 = precisionRecallF1(micro)
	if n := len(entity.ScoredTypes); n > 0 {
		block.MacroF1 = macroSum / float64(n)
	}
	return block
}

// computeCoverage derives the coverage record from the deduplicated gold
// and prediction sets.
func computeCoverage(gold, pred []*entity.Record) Coverage {
	goldNotes := noteSet(gold)
	predNotes := noteSet(pred)
	outside := 0
	for id := range goldNotes {
		if !predNotes[id] {
			outside++
		}
	}
	return Coverage{
		GoldItems:            len(gold),
		PredItems:            len(pred),
		GoldNotes:            len(goldNotes),
		PredNotes:            len(predNotes),
		GoldOutsidePredNotes: outside,
	}
}
