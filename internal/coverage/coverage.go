package coverage

import (
	"math"

	"github.com/codewithboateng/doclint/internal/docmodel"
)

// Result is the documented share of entities, as a percentage.
type Result struct {
	Total      int     `json:"total"`
	Documented int     `json:"documented"`
	Coverage   float64 `json:"coverage"`
}

// Calculator counts documented entities in a file selection.
type Calculator struct {
	Objects    docmodel.ObjectRegistry
	Visibility docmodel.Visibility // public when empty
	Excludes   []string
}

// Calculate returns coverage over files. An empty selection has nothing to
// measure and reports 100%.
func (c Calculator) Calculate(files []string) (*Result, error) {
	vis := c.Visibility
	if vis == "" {
		vis = docmodel.VisibilityPublic
	}
	res := &Result{}
	if c.Objects != nil {
		for _, e := range c.Objects.ObjectsForRule(docmodel.Query{
			Visibility:    vis,
			FileExcludes:  c.Excludes,
			FileSelection: files,
		}) {
			res.Total++
			if e.Documented() {
				res.Documented++
			}
		}
	}
	res.Coverage = percent(res.Documented, res.Total)
	return res, nil
}

func percent(documented, total int) float64 {
	if total == 0 {
		return 100
	}
	v := float64(documented) / float64(total) * 100
	return math.Round(v*100) / 100
}
