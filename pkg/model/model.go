package model

// Dataset is one topic's worth of concepts and prerequisite edges as handed over
// by the graph data supplier. It is treated as read-only by the engine.
type Dataset struct {
	Topic    string          `json:"topic" toml:"topic" yaml:"topic"`
	Concepts []ConceptRecord `json:"concepts" toml:"concepts" yaml:"concepts"`
	Edges    []Edge          `json:"edges" toml:"edges" yaml:"edges"`
}

// ConceptRecord represents one learnable concept in the graph.
// It is caller-owned; derived fields live on engine-owned values joined by ID.
type ConceptRecord struct {
	ID          string  `json:"id" toml:"id" yaml:"id"`
	Name        string  `json:"name" toml:"name" yaml:"name"`
	Mastery     Mastery `json:"mastery" toml:"mastery" yaml:"mastery"`
	Score       float64 `json:"score" toml:"score" yaml:"score"`
	Difficulty  int     `json:"difficulty" toml:"difficulty" yaml:"difficulty"`
	Description string  `json:"description" toml:"description" yaml:"description"`
}

// Edge is a directed prerequisite relation: Source must be understood before Target.
type Edge struct {
	Source string `json:"source" toml:"source" yaml:"source"`
	Target string `json:"target" toml:"target" yaml:"target"`
}

// Viewport is the pixel size of the rendering surface.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultViewport matches the size used before the host reports its dimensions.
var DefaultViewport = Viewport{Width: 800, Height: 600}

// Empty returns true if the viewport has no usable area
func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}

// Normalize fills in supplier defaults for missing or out-of-range fields.
// Missing mastery is derived from the score when one is present.
func (c ConceptRecord) Normalize() ConceptRecord {
	if c.Name == "" {
		c.Name = c.ID
	}
	if c.Score < 0 {
		c.Score = 0
	}
	if c.Mastery == "" {
		if c.Score > 0 {
			c.Mastery = MasteryFromScore(c.Score)
		} else {
			c.Mastery = MasteryNotStarted
		}
	}
	if !c.Mastery.Valid() {
		c.Mastery = MasteryNotStarted
	}
	c.Difficulty = ClampDifficulty(c.Difficulty)
	return c
}

// ClampDifficulty bounds a difficulty to 1..5, treating zero as the easiest level.
func ClampDifficulty(d int) int {
	switch {
	case d < MinDifficulty:
		return MinDifficulty
	case d > MaxDifficulty:
		return MaxDifficulty
	}
	return d
}

// Normalize returns a copy of the dataset with every record normalized.
func (d *Dataset) Normalize() *Dataset {
	out := &Dataset{
		Topic:    d.Topic,
		Concepts: make([]ConceptRecord, len(d.Concepts)),
		Edges:    append([]Edge(nil), d.Edges...),
	}
	for i, c := range d.Concepts {
		out.Concepts[i] = c.Normalize()
	}
	return out
}
