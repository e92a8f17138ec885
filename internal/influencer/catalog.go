package influencer

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

type NamedOption struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
}

// HairModelOption is tagged "f", "m" or "unisex".
type HairModelOption struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
	Type  string `yaml:"type" json:"type"`
}

type OptionCatalog struct {
	ShotTypes   []NamedOption     `yaml:"shot_types" json:"shotTypes"`
	Ethnicities []NamedOption     `yaml:"ethnicities" json:"ethnicities"`
	AgeRanges   []NamedOption     `yaml:"age_ranges" json:"ageRanges"`
	HairColors  []NamedOption     `yaml:"hair_colors" json:"hairColors"`
	HairModels  []HairModelOption `yaml:"hair_models" json:"hairModels"`
	Outfits     []NamedOption     `yaml:"outfits" json:"outfits"`
	Backgrounds []NamedOption     `yaml:"backgrounds" json:"backgrounds"`
	Models      []NamedOption     `yaml:"models" json:"models"`
}

var (
	catalogOnce sync.Once
	catalog     OptionCatalog
)

// Catalog returns the embedded option lists. The returned value shares
// slices with the package copy and must not be mutated.
func Catalog() OptionCatalog {
	catalogOnce.Do(func() {
		c, err := parseCatalog(catalogYAML)
		if err != nil {
			panic(err)
		}
		catalog = c
	})
	return catalog
}

func parseCatalog(raw []byte) (OptionCatalog, error) {
	var c OptionCatalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return OptionCatalog{}, fmt.Errorf("decode option catalog: %w", err)
	}
	if len(c.HairModels) == 0 {
		return OptionCatalog{}, fmt.Errorf("decode option catalog: no hair models")
	}
	for _, hm := range c.HairModels {
		switch hm.Type {
		case "f", "m", "unisex":
		default:
			return OptionCatalog{}, fmt.Errorf("decode option catalog: hair model %q has unknown type %q", hm.Value, hm.Type)
		}
	}
	return c, nil
}

// HairModelsFor lists the hairstyles valid for the gender, in catalog order.
func HairModelsFor(g Gender) []HairModelOption {
	want := "f"
	if g == Male {
		want = "m"
	}

	all := Catalog().HairModels
	out := make([]HairModelOption, 0, len(all))
	for _, hm := range all {
		if hm.Type == "unisex" || hm.Type == want {
			out = append(out, hm)
		}
	}
	return out
}

func ModelLabel(model string) string {
	for _, o := range Catalog().Models {
		if o.Value == model {
			return o.Label
		}
	}
	return model
}

func isModel(model string) bool {
	for _, o := range Catalog().Models {
		if o.Value == model {
			return true
		}
	}
	return false
}
