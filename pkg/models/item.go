// Package models defines the catalog item record shared by every backend.
package models

import "strings"

// MaxImages caps how many image URLs an item may carry. Anything past the
// cap is dropped, matching the server's expected limit.
const MaxImages = 15

// Item is a catalog record. ID is user-assigned and immutable once set;
// uniqueness is enforced at create time by the active backend.
type Item struct {
	ID     string   `json:"id" yaml:"id"`
	Name   string   `json:"name" yaml:"name"`
	Desc   string   `json:"desc,omitempty" yaml:"desc,omitempty"`
	Tags   []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Images []string `json:"images,omitempty" yaml:"images,omitempty"`
}

// Clone returns a deep copy so callers can mutate the result freely.
func (it *Item) Clone() *Item {
	out := *it
	if it.Tags != nil {
		out.Tags = append([]string(nil), it.Tags...)
	}
	if it.Images != nil {
		out.Images = append([]string(nil), it.Images...)
	}
	return &out
}

// ClampImages trims entries, drops empties, and caps the list at MaxImages.
// A nil input stays nil.
func ClampImages(urls []string) []string {
	if urls == nil {
		return nil
	}
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		out = append(out, u)
		if len(out) == MaxImages {
			break
		}
	}
	return out
}

// SplitList turns a comma-separated form field into a trimmed,
// empty-filtered sequence. Returns nil for blank input.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// JoinList is the inverse of SplitList, used to pre-fill edit dialog fields.
func JoinList(parts []string) string {
	return strings.Join(parts, ", ")
}
