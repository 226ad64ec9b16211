// Package security implements the query guard for destructive SPARQL updates.
package security

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/kgq/assets"
	"github.com/doeshing/kgq/internal/domain"
	"github.com/doeshing/kgq/internal/pkg/filesystem"
	"github.com/doeshing/kgq/internal/ports"
)

// Guardrail implements ports.QueryGuard with regex rules.
type Guardrail struct {
	patterns []compiledPattern
}

type compiledPattern struct {
	re   *regexp.Regexp
	rule QueryPattern
}

// QueryPattern describes a regex-based guard rule.
type QueryPattern struct {
	Pattern string `yaml:"pattern"`
	Message string `yaml:"message"`
	Action  string `yaml:"action"`
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	Rules struct {
		QueryPatterns []QueryPattern `yaml:"query_patterns"`
	} `yaml:"rules"`
}

// NewGuardrail loads rules from path, or the embedded defaults when the path
// is empty or missing.
func NewGuardrail(path string) (*Guardrail, error) {
	rules, err := loadRules(path)
	if err != nil {
		return nil, err
	}
	return compile(rules.Rules.QueryPatterns)
}

func compile(patterns []QueryPattern) (*Guardrail, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		expr := pattern.Pattern
		if !strings.HasPrefix(expr, "(?i)") {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("guard rule %q: %w", pattern.Pattern, err)
		}
		compiled = append(compiled, compiledPattern{re: re, rule: pattern})
	}
	return &Guardrail{patterns: compiled}, nil
}

// Evaluate implements ports.QueryGuard. The most severe matched action wins.
func (g *Guardrail) Evaluate(query string) (domain.GuardVerdict, error) {
	if g == nil {
		return domain.GuardVerdict{}, errors.New("guardrail nil")
	}
	verdict := domain.GuardVerdict{Action: domain.GuardAllow}
	for _, pattern := range g.patterns {
		if !pattern.re.MatchString(query) {
			continue
		}
		action := parseAction(pattern.rule.Action)
		if severity(action) > severity(verdict.Action) {
			verdict.Action = action
		}
		verdict.Reasons = append(verdict.Reasons, pattern.rule.Message)
		verdict.MatchedRules = append(verdict.MatchedRules, pattern.rule.Pattern)
	}
	return verdict, nil
}

// RuleCount returns the number of loaded rules.
func (g *Guardrail) RuleCount() int { return len(g.patterns) }

func loadRules(path string) (RulesFile, error) {
	var rules RulesFile
	data := assets.DefaultGuardYAML
	if path != "" {
		if custom, err := os.ReadFile(filesystem.ExpandPath(path)); err == nil {
			data = custom
		}
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RulesFile{}, fmt.Errorf("parse guard rules: %w", err)
	}
	if len(rules.Rules.QueryPatterns) == 0 {
		if err := yaml.Unmarshal(assets.DefaultGuardYAML, &rules); err != nil {
			return RulesFile{}, err
		}
	}
	return rules, nil
}

func parseAction(value string) domain.GuardAction {
	switch strings.ToLower(value) {
	case "block":
		return domain.GuardBlock
	case "allow":
		return domain.GuardAllow
	default:
		return domain.GuardConfirm
	}
}

func severity(action domain.GuardAction) int {
	switch action {
	case domain.GuardBlock:
		return 2
	case domain.GuardConfirm:
		return 1
	default:
		return 0
	}
}

// AllowAll is the guard used when security.enabled is false.
type AllowAll struct{}

func (AllowAll) Evaluate(string) (domain.GuardVerdict, error) {
	return domain.GuardVerdict{Action: domain.GuardAllow}, nil
}

var (
	_ ports.QueryGuard = (*Guardrail)(nil)
	_ ports.QueryGuard = AllowAll{}
)
