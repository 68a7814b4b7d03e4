// Package drift compares a stored element snapshot with a freshly rescanned
// one and classifies how each old reference maps onto the new state.
package drift

import (
	"math"
	"sort"

	"depscope/internal/element"
	"depscope/internal/match"
)

// Status classifies one element reference after comparison.
type Status string

const (
	StatusUnchanged Status = "unchanged"
	StatusMoved     Status = "moved"
	StatusRenamed   Status = "renamed"
	StatusMissing   Status = "missing"
	StatusAmbiguous Status = "ambiguous"
)

// Location is a file/line pair.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// Entry is the classification of one old element reference. An ambiguous
// match is a result, never an error: it carries the best candidate's
// confidence and blocks nothing else in the report.
type Entry struct {
	Reference   string    `json:"reference"`
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	OldLocation Location  `json:"old_location"`
	NewLocation *Location `json:"new_location,omitempty"`
	Confidence  float64   `json:"confidence"`
	Suggestion  string    `json:"suggestion,omitempty"`
	AutoFixable bool      `json:"auto_fixable"`
}

// Report lists one entry per old element, in the old snapshot's insertion
// order so repeated runs over the same pair of snapshots are identical.
type Report struct {
	Entries []Entry `json:"entries"`
}

// Counts tallies entries by status.
func (r *Report) Counts() map[Status]int {
	out := make(map[Status]int)
	for _, e := range r.Entries {
		out[e.Status]++
	}
	return out
}

// Config holds the fuzzy-matching knobs. The values are tunable constants,
// not fixed law; defaults are chosen so a one-character rename in the same
// file clears the floor and a cross-file move does not get guessed at all.
type Config struct {
	// RenameFloor is the confidence a rename candidate must clear.
	RenameFloor float64
	// MaxNameDistanceRatio bounds candidate edit distance relative to the
	// old name's length.
	MaxNameDistanceRatio float64
	// NameWeight and ProximityWeight combine name similarity and positional
	// proximity into one confidence. Same-file matching is enforced
	// structurally: cross-file renames are reported as missing rather than
	// auto-corrected.
	NameWeight      float64
	ProximityWeight float64
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		RenameFloor:          0.8,
		MaxNameDistanceRatio: 0.3,
		NameWeight:           0.7,
		ProximityWeight:      0.3,
	}
}

// Detector classifies drift between two element stores.
type Detector struct {
	cfg Config
}

// NewDetector builds a detector, falling back to defaults for unset knobs.
func NewDetector(cfg Config) *Detector {
	def := DefaultConfig()
	if cfg.RenameFloor <= 0 {
		cfg.RenameFloor = def.RenameFloor
	}
	if cfg.MaxNameDistanceRatio <= 0 {
		cfg.MaxNameDistanceRatio = def.MaxNameDistanceRatio
	}
	if cfg.NameWeight <= 0 && cfg.ProximityWeight <= 0 {
		cfg.NameWeight = def.NameWeight
		cfg.ProximityWeight = def.ProximityWeight
	}
	return &Detector{cfg: cfg}
}

// Compare classifies every element of the old store against the new store.
// The comparison reads only the two stores; it never touches the dependency
// graph.
func (d *Detector) Compare(old, fresh *element.Store) *Report {
	report := &Report{Entries: make([]Entry, 0, old.Len())}
	for _, el := range old.All() {
		report.Entries = append(report.Entries, d.classify(el, fresh))
	}
	return report
}

func (d *Detector) classify(old *element.CodeElement, fresh *element.Store) Entry {
	entry := Entry{
		Reference:   old.ID,
		Name:        old.Name,
		OldLocation: Location{File: old.File, Line: old.Line},
	}

	sameFile := fresh.FindByFile(old.File)

	// Exact identity: same name, file and line.
	for _, cand := range sameFile {
		if cand.Name == old.Name && cand.Line == old.Line {
			entry.Status = StatusUnchanged
			entry.Confidence = 1.0
			return entry
		}
	}

	// Same name and file, different line: moved. When several same-name
	// declarations exist, the nearest line wins.
	var moved *element.CodeElement
	for _, cand := range sameFile {
		if cand.Name != old.Name {
			continue
		}
		if moved == nil || lineDelta(cand.Line, old.Line) < lineDelta(moved.Line, old.Line) {
			moved = cand
		}
	}
	if moved != nil {
		entry.Status = StatusMoved
		entry.Confidence = 1.0
		entry.NewLocation = &Location{File: moved.File, Line: moved.Line}
		entry.Suggestion = moved.ID
		entry.AutoFixable = true
		return entry
	}

	// Fuzzy rename search, same file and type only.
	maxDist := int(math.Ceil(d.cfg.MaxNameDistanceRatio * float64(len([]rune(old.Name)))))
	type scored struct {
		el    *element.CodeElement
		score float64
	}
	var cleared []scored
	for _, cand := range sameFile {
		if cand.Type != old.Type {
			continue
		}
		if match.Levenshtein(old.Name, cand.Name) > maxDist {
			continue
		}
		score := d.confidence(old, cand)
		if score >= d.cfg.RenameFloor {
			cleared = append(cleared, scored{el: cand, score: score})
		}
	}
	sort.Slice(cleared, func(i, j int) bool {
		if cleared[i].score != cleared[j].score {
			return cleared[i].score > cleared[j].score
		}
		return cleared[i].el.ID < cleared[j].el.ID
	})

	switch len(cleared) {
	case 0:
		entry.Status = StatusMissing
		entry.Confidence = 0
	case 1:
		best := cleared[0]
		entry.Status = StatusRenamed
		entry.Confidence = best.score
		entry.NewLocation = &Location{File: best.el.File, Line: best.el.Line}
		entry.Suggestion = best.el.ID
		entry.AutoFixable = true
	default:
		// Multiple candidates clear the floor: report, do not guess.
		entry.Status = StatusAmbiguous
		entry.Confidence = cleared[0].score
	}
	return entry
}

// confidence combines name similarity with positional proximity. Proximity
// decays with line distance; same-file is already guaranteed by the caller.
func (d *Detector) confidence(old, cand *element.CodeElement) float64 {
	nameSim := match.Similarity(old.Name, cand.Name)
	proximity := 1.0 / (1.0 + float64(lineDelta(old.Line, cand.Line))/50.0)
	total := d.cfg.NameWeight + d.cfg.ProximityWeight
	return (d.cfg.NameWeight*nameSim + d.cfg.ProximityWeight*proximity) / total
}

// ChangedFiles reports files whose content signature differs between two
// signature maps, plus files present on only one side. Sorted for
// determinism.
func ChangedFiles(old, fresh map[string]string) []string {
	seen := make(map[string]bool, len(old)+len(fresh))
	var out []string
	for f, sig := range old {
		if newSig, ok := fresh[f]; !ok || newSig != sig {
			seen[f] = true
			out = append(out, f)
		}
	}
	for f := range fresh {
		if _, ok := old[f]; !ok && !seen[f] {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

func lineDelta(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
