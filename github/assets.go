// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"fmt"
	"strings"
)

// AssetRule is one entry of the ordered asset-selection policy. A rule's
// Matches predicate is evaluated against every asset name of a release; the
// first rule with at least one match decides, and among its matches the first
// asset in release order wins.
type AssetRule struct {
	// Name identifies the rule in configuration.
	Name string
	// Matches reports whether an asset name satisfies the rule for the given
	// plugin identity.
	Matches func(assetName, identity string) bool
}

// Rule names accepted in configuration.
const (
	RuleLatestZip       = "latest-zip"
	RuleVersionedPrefix = "versioned-prefix"
	RuleExactName       = "exact-name"
	RuleAnyZip          = "any-zip"
)

// DefaultAssetRuleOrder is the default selection priority.
var DefaultAssetRuleOrder = []string{
	RuleLatestZip,
	RuleVersionedPrefix,
	RuleExactName,
	RuleAnyZip,
}

// assetRules holds every known rule by name.
var assetRules = map[string]AssetRule{
	RuleLatestZip: {
		Name: RuleLatestZip,
		Matches: func(assetName, _ string) bool {
			return assetName == "latest.zip"
		},
	},
	RuleVersionedPrefix: {
		Name: RuleVersionedPrefix,
		// `<identity>-<version...>.zip`, excluding `-latest.zip` so this rule
		// never shadows the latest-zip pattern family.
		Matches: func(assetName, identity string) bool {
			return strings.HasPrefix(assetName, identity+"-") &&
				strings.HasSuffix(assetName, ".zip") &&
				!strings.HasSuffix(assetName, "-latest.zip")
		},
	},
	RuleExactName: {
		Name: RuleExactName,
		Matches: func(assetName, identity string) bool {
			return assetName == identity+".zip"
		},
	},
	RuleAnyZip: {
		Name: RuleAnyZip,
		Matches: func(assetName, _ string) bool {
			return strings.HasSuffix(assetName, ".zip")
		},
	},
}

// RulesByName resolves an ordered list of rule names into the policy table.
// Unknown names are an error; an empty list yields the default order.
func RulesByName(names []string) ([]AssetRule, error) {
	if len(names) == 0 {
		names = DefaultAssetRuleOrder
	}
	rules := make([]AssetRule, 0, len(names))
	for _, name := range names {
		rule, ok := assetRules[name]
		if !ok {
			return nil, fmt.Errorf("unknown asset selection rule %q", name)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// SelectAsset picks the bundle asset for an identity from a release's asset
// list. Rules are consulted strictly in order: a later rule is only evaluated
// when all earlier ones matched nothing.
func SelectAsset(assets []Asset, identity string, rules []AssetRule) (Asset, bool) {
	for _, rule := range rules {
		for _, asset := range assets {
			if rule.Matches(asset.Name, identity) {
				return asset, true
			}
		}
	}
	return Asset{}, false
}
