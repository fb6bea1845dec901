package service

import (
	"sort"
	"strings"
)

// Vault holds the placeholder -> secret mapping for one task execution.
// Instances are scoped per task and never shared, so one task's secrets
// cannot leak into another's masking.
//
// No Vault operation ever emits a secret value toward the LLM prompt, the
// transcript, or the execution result; secrets surface only through Unmask
// at the point of actual browser interaction.
type Vault struct {
	names  []string
	values map[string]string
}

func NewVault() *Vault {
	return &Vault{values: make(map[string]string)}
}

// Add merges entries into the vault, last write wins per key. A single Add
// of a map fixes iteration order by sorting its keys, so masking order is
// deterministic. No-op on empty input.
func (v *Vault) Add(data map[string]string) {
	if len(data) == 0 {
		return
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, seen := v.values[k]; !seen {
			v.names = append(v.names, k)
		}
		v.values[k] = data[k]
	}
}

func (v *Vault) Len() int {
	return len(v.names)
}

// Placeholders returns the placeholder names in insertion order.
func (v *Vault) Placeholders() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}

// Mask replaces every occurrence of each non-empty secret with its
// [placeholder]. Longer secrets are replaced first so that a secret which
// contains another as a substring is masked whole; equal lengths fall back
// to insertion order.
func (v *Vault) Mask(text string) string {
	if text == "" || len(v.names) == 0 {
		return text
	}
	ordered := make([]string, len(v.names))
	copy(ordered, v.names)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(v.values[ordered[i]]) > len(v.values[ordered[j]])
	})
	for _, name := range ordered {
		secret := v.values[name]
		if secret == "" {
			continue
		}
		text = strings.ReplaceAll(text, secret, "["+name+"]")
	}
	return text
}

// Unmask replaces [placeholder] occurrences with the secret value. As a
// fallback for replies that drop the brackets, a reply that consists of
// exactly the bare placeholder name resolves to the secret. Text without
// placeholders is returned unchanged.
func (v *Vault) Unmask(text string) string {
	if text == "" || len(v.names) == 0 {
		return text
	}
	for _, name := range v.names {
		text = strings.ReplaceAll(text, "["+name+"]", v.values[name])
	}
	if secret, ok := v.values[strings.TrimSpace(text)]; ok {
		return secret
	}
	return text
}

// Describe renders the system-prompt fragment listing placeholder names.
// Secret values are never included.
func (v *Vault) Describe() string {
	if len(v.names) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("SENSITIVE DATA:\n")
	b.WriteString("The following placeholders protect sensitive values:\n")
	for _, name := range v.names {
		b.WriteString("- [" + name + "]: use this placeholder whenever you need to reference this value\n")
	}
	b.WriteString("\nNever try to guess or uncover the real values. Always use the placeholders.")
	return b.String()
}
