// Package research holds the static results of the N=8 matched-pair study
// together with the copy shown on each slide.
package research

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed research.yaml
var embedded []byte

type Data struct {
	Title       string `yaml:"title"`
	Headline    string `yaml:"headline"`
	Tagline     string `yaml:"tagline"`
	Presenters  string `yaml:"presenters"`
	Affiliation string `yaml:"affiliation"`
	Footer      string `yaml:"footer"`

	Slides       []SlideCopy     `yaml:"slides"`
	Demographics Demographics    `yaml:"demographics"`
	Domains      []Domain        `yaml:"domains"`
	Items        []KnowledgeItem `yaml:"knowledge_items"`
	Trajectories []Trajectory    `yaml:"trajectories"`
	Quotes       []Quote         `yaml:"quotes"`
	Pipeline     Pipeline        `yaml:"pipeline"`
}

// SlideCopy is the markdown text of one slide, keyed by the slide's URL key.
type SlideCopy struct {
	Key      string `yaml:"key"`
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	Body     string `yaml:"body"`
}

// Demographics are cohort percentages at baseline.
type Demographics struct {
	ScienceBg   int `yaml:"science_bg"`
	ZeroCoding  int `yaml:"zero_coding"`
	NoLowCode   int `yaml:"no_low_code"`
	NoDashboard int `yaml:"no_dashboard"`
}

type Domain struct {
	Name       string  `yaml:"name"`
	Pre        float64 `yaml:"pre"`
	Post       float64 `yaml:"post"`
	Gain       float64 `yaml:"gain"`
	EffectSize float64 `yaml:"effect_size"`
}

type KnowledgeItem struct {
	Item string  `yaml:"item"`
	Pre  float64 `yaml:"pre"`
	Post float64 `yaml:"post"`
	Gain float64 `yaml:"gain"`
}

type Trajectory struct {
	Student string  `yaml:"student"`
	Pre     float64 `yaml:"pre"`
	Post    float64 `yaml:"post"`
}

type Quote struct {
	Theme string `yaml:"theme"`
	Text  string `yaml:"text"`
}

type Pipeline struct {
	Nodes []PipelineNode `yaml:"nodes"`
	Edges []PipelineEdge `yaml:"edges"`
}

type PipelineNode struct {
	ID      string `yaml:"id"`
	Label   string `yaml:"label"`
	Caption string `yaml:"caption"`
	Fill    string `yaml:"fill"`
	Font    string `yaml:"font"`
}

type PipelineEdge struct {
	From  string `yaml:"from"`
	To    string `yaml:"to"`
	Label string `yaml:"label"`
}

// Parse decodes and validates a research document.
func Parse(raw []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("research yaml: %w", err)
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadFile reads an override document from disk.
func LoadFile(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

var (
	defaultOnce sync.Once
	defaultData *Data
)

// Default returns the embedded document. The embed is part of the binary,
// so a parse failure is a build defect and panics.
func Default() *Data {
	defaultOnce.Do(func() {
		d, err := Parse(embedded)
		if err != nil {
			panic(err)
		}
		defaultData = d
	})
	return defaultData
}

// Slide returns the copy for key, or an empty SlideCopy.
func (d *Data) Slide(key string) SlideCopy {
	for _, s := range d.Slides {
		if s.Key == key {
			return s
		}
	}
	return SlideCopy{Key: key}
}

func (d *Data) validate() error {
	seen := make(map[string]bool, len(d.Slides))
	for _, s := range d.Slides {
		if s.Key == "" {
			return fmt.Errorf("research yaml: slide without key")
		}
		if seen[s.Key] {
			return fmt.Errorf("research yaml: duplicate slide %q", s.Key)
		}
		seen[s.Key] = true
	}

	nodes := make(map[string]bool, len(d.Pipeline.Nodes))
	for _, n := range d.Pipeline.Nodes {
		nodes[n.ID] = true
	}
	for _, e := range d.Pipeline.Edges {
		if !nodes[e.From] || !nodes[e.To] {
			return fmt.Errorf("research yaml: edge %s->%s references unknown node", e.From, e.To)
		}
	}
	return nil
}
