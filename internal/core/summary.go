package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// AnalysisSummary is a compact summary of a filtered transaction set.
type AnalysisSummary struct {
	Count      int              `json:"count"`
	Total      float64          `json:"total"`
	ByCategory []CategoryAmount `json:"byCategory"`
}

// Summarize totals values overall and per category, categories in first-seen order.
func Summarize(txns []Transaction) AnalysisSummary {
	s := AnalysisSummary{Count: len(txns), ByCategory: []CategoryAmount{}}
	index := map[string]int{}
	for _, t := range txns {
		s.Total += t.Value
		i, ok := index[t.Category]
		if !ok {
			i = len(s.ByCategory)
			index[t.Category] = i
			s.ByCategory = append(s.ByCategory, CategoryAmount{Name: t.Category})
		}
		s.ByCategory[i].Amount += t.Value
		s.ByCategory[i].Count++
	}
	return s
}
