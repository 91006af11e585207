package manifest

import (
	"os"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/rvctools/vcinstall/internal/errors"
)

// RuleSet holds the package names dropped from the generic manifest.
//
// Matching is by exact normalized package name, never by substring or
// prefix: a rule for "torch" drops "torch" and "torch==2.2.2" but keeps
// "torchcrepe".
type RuleSet struct {
	Drop []string `toml:"drop"`
}

// DefaultRules returns the built-in rule set for macOS: GPU-only
// libraries, wheels built for other platforms, and the packages the
// environment builder pins and installs manually ahead of the manifest.
func DefaultRules() RuleSet {
	return RuleSet{
		Drop: []string{
			// Installed manually, pinned, before the manifest.
			"numpy",
			"torch",
			"torchaudio",
			"faiss-cpu",
			// GPU-only or wrong-platform variants.
			"torchvision",
			"tensorflow",
			"onnxruntime-gpu",
			"pedalboard",
		},
	}
}

// LoadRules reads a TOML rule file. An empty path returns the defaults.
func LoadRules(path string) (RuleSet, error) {
	if path == "" {
		return DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, errors.Wrapf(err, "reading rules file %s", path)
	}

	var rules RuleSet
	if err := toml.Unmarshal(data, &rules); err != nil {
		return RuleSet{}, errors.Wrapf(err, "parsing rules file %s", path)
	}
	if len(rules.Drop) == 0 {
		return RuleSet{}, errors.Newf("rules file %s defines no drop rules", path)
	}
	return rules, nil
}

// Matches reports whether a package name is dropped by the rule set.
func (r RuleSet) Matches(name string) bool {
	n := normalize(name)
	for _, rule := range r.Drop {
		if normalize(rule) == n {
			return true
		}
	}
	return false
}
