package inference

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/okian/campusai/internal/domain/model"
)

// variant is one accepted response shape. ok=false means the body is not
// this shape and the next variant should be tried.
type variant[T any] func(body []byte) (v T, ok bool)

func firstOf[T any](body []byte, what string, variants ...variant[T]) (T, error) {
	for _, try := range variants {
		if v, ok := try(body); ok {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: no %s", ErrShape, what)
}

type textFields struct {
	SummaryText     string `json:"summary_text"`
	GeneratedText   string `json:"generated_text"`
	TranslationText string `json:"translation_text"`
}

func listField(pick func(textFields) string) variant[string] {
	return func(body []byte) (string, bool) {
		var list []textFields
		if json.Unmarshal(body, &list) != nil || len(list) == 0 {
			return "", false
		}
		s := strings.TrimSpace(pick(list[0]))
		return s, s != ""
	}
}

func objectField(pick func(textFields) string) variant[string] {
	return func(body []byte) (string, bool) {
		var obj textFields
		if json.Unmarshal(body, &obj) != nil {
			return "", false
		}
		s := strings.TrimSpace(pick(obj))
		return s, s != ""
	}
}

func summaryText(f textFields) string     { return f.SummaryText }
func generatedText(f textFields) string   { return f.GeneratedText }
func translationText(f textFields) string { return f.TranslationText }

// ParseSummary accepts [{summary_text}], {summary_text}, [{generated_text}]
// or {generated_text}, in that order. The text must be non-empty.
func ParseSummary(body []byte) (string, error) {
	return firstOf(body, "summary",
		listField(summaryText),
		objectField(summaryText),
		listField(generatedText),
		objectField(generatedText),
	)
}

// ParseTranslation reads translation_text, then generated_text, from the
// first list element.
func ParseTranslation(body []byte) (string, error) {
	return firstOf(body, "translation",
		listField(translationText),
		listField(generatedText),
	)
}

// ParseGenerated reads generated_text from the first list element.
func ParseGenerated(body []byte) (string, error) {
	return firstOf(body, "generated text", listField(generatedText))
}

// ParseClassification accepts a flat [{label,score}] list or a nested
// [[{label,score}]] list and returns the scores sorted descending.
func ParseClassification(body []byte) ([]model.LabelScore, error) {
	flat := func(body []byte) ([]model.LabelScore, bool) {
		var list []model.LabelScore
		if json.Unmarshal(body, &list) != nil {
			return nil, false
		}
		return list, validLabels(list)
	}
	nested := func(body []byte) ([]model.LabelScore, bool) {
		var lists [][]model.LabelScore
		if json.Unmarshal(body, &lists) != nil {
			return nil, false
		}
		var all []model.LabelScore
		for _, l := range lists {
			all = append(all, l...)
		}
		return all, validLabels(all)
	}
	scores, err := firstOf(body, "classification", flat, nested)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	return scores, nil
}

func validLabels(list []model.LabelScore) bool {
	if len(list) == 0 {
		return false
	}
	for _, ls := range list {
		if ls.Label == "" {
			return false
		}
	}
	return true
}

// ParseEmbedding accepts a flat vector, or a rectangular matrix of token
// vectors which is mean-pooled. Empty or ragged input is rejected.
func ParseEmbedding(body []byte) ([]float64, error) {
	flat := func(body []byte) ([]float64, bool) {
		var v []float64
		if json.Unmarshal(body, &v) != nil {
			return nil, false
		}
		return v, len(v) > 0
	}
	matrix := func(body []byte) ([]float64, bool) {
		var rows [][]float64
		if json.Unmarshal(body, &rows) != nil || len(rows) == 0 {
			return nil, false
		}
		return meanPool(rows)
	}
	return firstOf(body, "embedding", flat, matrix)
}

func meanPool(rows [][]float64) ([]float64, bool) {
	width := len(rows[0])
	if width == 0 {
		return nil, false
	}
	out := make([]float64, width)
	for _, row := range rows {
		if len(row) != width {
			return nil, false
		}
		for i, x := range row {
			out[i] += x
		}
	}
	n := float64(len(rows))
	for i := range out {
		out[i] /= n
	}
	return out, true
}
