package domain

import (
	"fmt"
	"strings"
)

// Candidate is one session seed tried when decrypting. Name identifies it in
// logs and metrics; the seed itself is never logged.
type Candidate struct {
	Name string
	Seed string
}

// ParseFallbackSeeds parses a comma-separated "name:seed" list. Every entry must
// carry a name; the seed is everything after the first colon and may contain
// colons itself. At most MaxFallbackSeeds entries are accepted.
func ParseFallbackSeeds(raw string) ([]Candidate, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	if len(parts) > MaxFallbackSeeds {
		return nil, fmt.Errorf("%w: at most %d seeds, got %d", ErrInvalidFallbackSeeds, MaxFallbackSeeds, len(parts))
	}

	seen := make(map[string]struct{}, len(parts))
	candidates := make([]Candidate, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("%w: empty entry at position %d", ErrInvalidFallbackSeeds, i+1)
		}

		name, seed, found := strings.Cut(part, ":")
		if !found {
			return nil, fmt.Errorf("%w: entry %d is not in name:seed form", ErrInvalidFallbackSeeds, i+1)
		}
		name, seed = strings.TrimSpace(name), strings.TrimSpace(seed)
		if name == "" || seed == "" {
			return nil, fmt.Errorf("%w: entry %d needs a name and a seed", ErrInvalidFallbackSeeds, i+1)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidFallbackSeeds, name)
		}
		seen[name] = struct{}{}

		candidates = append(candidates, Candidate{Name: name, Seed: seed})
	}
	return candidates, nil
}
