// Package publicid generates the opaque public addresses used to share lists
// and global views: URL slugs, list hash IDs, and user global hash IDs.
// Generation is explicit and side-effect free so entities can be constructed
// and tested in isolation.
package publicid

import (
	"strings"

	"github.com/gosimple/slug"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	slugSuffixLen   = 8
	listHashLen     = 6
	globalHashLen   = 10
	fallbackSlugTag = "lista"
)

// NewSlug derives a unique URL slug from a list name. A fresh random suffix
// makes the slug unique even when names collide, and a renamed list gets a
// brand new slug.
func NewSlug(name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = fallbackSlugTag
	}
	suffix, err := gonanoid.New(slugSuffixLen)
	if err != nil {
		return "", err
	}
	return base + "-" + suffix, nil
}

// NewListHash returns the short uppercase share code of a list. Generated once
// at creation and immutable afterwards.
func NewListHash() (string, error) {
	id, err := gonanoid.New(listHashLen)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(id), nil
}

// NewGlobalHash returns the share code addressing a user's cross-list view.
func NewGlobalHash() (string, error) {
	return gonanoid.New(globalHashLen)
}
