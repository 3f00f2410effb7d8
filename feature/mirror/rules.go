package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"data-mirror/core/engine"
	"data-mirror/core/storage"
	"data-mirror/core/utils"

	"github.com/minio/minio-go/v7"
)

// Rule binds one destination column to a source field or a template.
type Rule struct {
	// Dest is the destination column name.
	Dest string `json:"dest"`

	// Source is the source field to copy directly.
	Source string `json:"source,omitempty"`

	// Template concatenates source fields, e.g. "{first_name} {last_name}".
	// Missing fields expand to the empty string.
	Template string `json:"template,omitempty"`

	// Key marks this column as part of the matching key.
	Key bool `json:"key,omitempty"`

	// IgnoreCase compares this column case-insensitively during diffing.
	IgnoreCase bool `json:"ignore_case,omitempty"`
}

// RuleSet is the full rule document for one mirror job.
type RuleSet struct {
	Rules []Rule `json:"rules"`
}

// templatePattern matches {field} placeholders in rule templates.
var templatePattern = regexp.MustCompile(`\{([^{}]+)\}`)

// LoadRules downloads and validates the rule document from storage.
func LoadRules(ctx context.Context, client storage.Client, bucket, objectName string) (*RuleSet, error) {
	reader, err := client.GetObject(ctx, bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get rules %s: %w", objectName, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules %s: %w", objectName, err)
	}

	var rules RuleSet
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules %s: %w", objectName, err)
	}

	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules %s: %w", objectName, err)
	}

	return &rules, nil
}

// Validate checks the rule set for structural errors.
func (r *RuleSet) Validate() error {
	if len(r.Rules) == 0 {
		return fmt.Errorf("rule set is empty")
	}

	seen := make(map[string]struct{}, len(r.Rules))
	hasKey := false
	for _, rule := range r.Rules {
		if rule.Dest == "" {
			return fmt.Errorf("rule with empty dest column")
		}
		if _, dup := seen[rule.Dest]; dup {
			return fmt.Errorf("duplicate dest column %q", rule.Dest)
		}
		seen[rule.Dest] = struct{}{}

		hasSource := rule.Source != ""
		hasTemplate := rule.Template != ""
		if hasSource == hasTemplate {
			return fmt.Errorf("rule %q must declare exactly one of source or template", rule.Dest)
		}
		if rule.Key {
			hasKey = true
		}
	}

	if !hasKey {
		return fmt.Errorf("at least one rule must be marked as key")
	}

	return nil
}

// KeyFields returns the dest columns marked as key, in rule order.
func (r *RuleSet) KeyFields() []string {
	var keys []string
	for _, rule := range r.Rules {
		if rule.Key {
			keys = append(keys, rule.Dest)
		}
	}
	return keys
}

// DestColumns returns every dest column, in rule order.
func (r *RuleSet) DestColumns() []string {
	cols := make([]string, len(r.Rules))
	for i, rule := range r.Rules {
		cols[i] = rule.Dest
	}
	return cols
}

// Mappings converts the rule set into engine field mappings.
func (r *RuleSet) Mappings() []engine.FieldMapping {
	mappings := make([]engine.FieldMapping, len(r.Rules))
	for i, rule := range r.Rules {
		m := engine.FieldMapping{
			Name: rule.Dest,
			Key:  rule.Key,
		}
		if rule.Template != "" {
			m.Compute = templateCompute(rule.Template)
		} else {
			m.Source = rule.Source
		}
		if rule.IgnoreCase {
			field := rule.Dest
			m.Compare = func(mapped, dest engine.Record) bool {
				return strings.EqualFold(utils.ToString(mapped[field]), utils.ToString(dest[field]))
			}
		}
		mappings[i] = m
	}
	return mappings
}

// templateCompute returns a compute function expanding {field} placeholders
// against the source row.
func templateCompute(template string) engine.ComputeFunc {
	return func(ctx context.Context, row engine.Record) (any, error) {
		out := templatePattern.ReplaceAllStringFunc(template, func(match string) string {
			field := match[1 : len(match)-1]
			value, ok := row[field]
			if !ok || value == nil {
				return ""
			}
			return utils.ToString(value)
		})
		return out, nil
	}
}
