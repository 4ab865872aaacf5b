// Package catalog is the read-only champion reference data. It reads the
// Data Dragon champion.json layout; a snapshot is embedded as the default.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/DoyleJ11/lol-draft-series/internal/engine"
)

//go:embed champions.json
var embedded []byte

type ddragonFile struct {
	Version string                     `json:"version"`
	Data    map[string]ddragonChampion `json:"data"`
}

type ddragonChampion struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Name  string `json:"name"`
	Image struct {
		Full string `json:"full"`
	} `json:"image"`
}

type Catalog struct {
	version string
	byID    map[int]engine.Champion
	sorted  []engine.Champion
}

var _ engine.ChampionCatalog = (*Catalog)(nil)

// Default returns the embedded snapshot.
func Default() *Catalog {
	c, err := Parse(embedded)
	if err != nil {
		panic("catalog: embedded champions.json: " + err.Error())
	}
	return c
}

// LoadFile reads a champion.json from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read champions file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var f ddragonFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode champions: %w", err)
	}
	if len(f.Data) == 0 {
		return nil, fmt.Errorf("decode champions: no champions")
	}
	list := make([]engine.Champion, 0, len(f.Data))
	for name, dc := range f.Data {
		id, err := strconv.Atoi(dc.Key)
		if err != nil {
			return nil, fmt.Errorf("champion %s: bad key %q", name, dc.Key)
		}
		list = append(list, engine.Champion{ID: id, Key: dc.ID, Name: dc.Name, Image: dc.Image.Full})
	}
	c, err := New(list)
	if err != nil {
		return nil, err
	}
	c.version = f.Version
	return c, nil
}

// New builds a catalog from list, rejecting duplicate or non-positive ids.
func New(list []engine.Champion) (*Catalog, error) {
	c := &Catalog{byID: make(map[int]engine.Champion, len(list))}
	for _, ch := range list {
		if ch.ID <= 0 {
			return nil, fmt.Errorf("champion %q: id must be positive", ch.Name)
		}
		if _, dup := c.byID[ch.ID]; dup {
			return nil, fmt.Errorf("champion %d listed twice", ch.ID)
		}
		c.byID[ch.ID] = ch
		c.sorted = append(c.sorted, ch)
	}
	sort.Slice(c.sorted, func(i, j int) bool { return c.sorted[i].Name < c.sorted[j].Name })
	return c, nil
}

func (c *Catalog) ChampionByID(id int) (engine.Champion, bool) {
	ch, ok := c.byID[id]
	return ch, ok
}

// Champions returns every champion ordered by name.
func (c *Catalog) Champions() []engine.Champion {
	return append([]engine.Champion(nil), c.sorted...)
}

// Version is the Data Dragon version of the source file, if known.
func (c *Catalog) Version() string { return c.version }

func (c *Catalog) Len() int { return len(c.byID) }
