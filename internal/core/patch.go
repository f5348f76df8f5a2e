// AngelaMos | 2026
// patch.go

package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// UnknownFieldPolicy controls what an UpdateSchema does with patch keys
// outside its whitelist. Projects ignore them; publications reject the
// whole update.
type UnknownFieldPolicy int

const (
	IgnoreUnknownFields UnknownFieldPolicy = iota
	RejectUnknownFields
)

// Patch is a partial update body, keyed by JSON field name.
type Patch map[string]json.RawMessage

func (p Patch) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// UpdateSchema is the per-entity whitelist of patchable fields.
type UpdateSchema struct {
	allowed map[string]struct{}
	policy  UnknownFieldPolicy
}

func NewUpdateSchema(policy UnknownFieldPolicy, fields ...string) UpdateSchema {
	allowed := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		allowed[f] = struct{}{}
	}
	return UpdateSchema{allowed: allowed, policy: policy}
}

// Filter returns the patch restricted to whitelisted keys. With the reject
// policy, any unknown key fails the whole patch with ErrInvalidInput.
func (s UpdateSchema) Filter(patch Patch) (Patch, error) {
	filtered := make(Patch, len(patch))
	var unknown []string

	for key, value := range patch {
		if _, ok := s.allowed[key]; ok {
			filtered[key] = value
			continue
		}
		unknown = append(unknown, key)
	}

	if len(unknown) > 0 && s.policy == RejectUnknownFields {
		sort.Strings(unknown)
		return nil, fmt.Errorf(
			"unknown fields: %s: %w",
			strings.Join(unknown, ", "),
			ErrInvalidInput,
		)
	}

	return filtered, nil
}

// Decode filters the patch and unmarshals the surviving keys into dst,
// which should be a struct of pointer fields.
func (s UpdateSchema) Decode(patch Patch, dst any) error {
	filtered, err := s.Filter(patch)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(filtered)
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode patch: %w", ErrInvalidInput)
	}

	return nil
}

// Decode unmarshals an already-filtered patch into dst, which should be
// a struct of pointer fields so absent keys stay nil.
func Decode(patch Patch, dst any) error {
	raw, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode patch: %w", ErrInvalidInput)
	}

	return nil
}
