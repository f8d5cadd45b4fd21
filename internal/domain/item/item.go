// Package item enumerates the kinds of indexed items.
package item

import (
	"fmt"

	"github.com/kailas-cloud/lookdex/internal/domain"
)

// Type is the value of the item type field on every indexed document.
type Type string

// Item types. Detached types are nested sub-items indexed as their own documents.
const (
	Content         Type = "content"
	Media           Type = "media"
	Member          Type = "member"
	DetachedContent Type = "detached_content"
	DetachedMedia   Type = "detached_media"
	DetachedMember  Type = "detached_member"
)

// AllTypes lists every item type in a stable order.
var AllTypes = []Type{Content, Media, Member, DetachedContent, DetachedMedia, DetachedMember}

// PublishedType is the host platform's item kind, shared by an item and its detached variant.
type PublishedType string

// Published item kinds.
const (
	PublishedContent PublishedType = "content"
	PublishedMedia   PublishedType = "media"
	PublishedMember  PublishedType = "member"
)

// AllPublishedTypes lists every published type in a stable order.
var AllPublishedTypes = []PublishedType{PublishedContent, PublishedMedia, PublishedMember}

// PublishedType maps an item type to its published kind.
func (t Type) PublishedType() (PublishedType, error) {
	switch t {
	case Content, DetachedContent:
		return PublishedContent, nil
	case Media, DetachedMedia:
		return PublishedMedia, nil
	case Member, DetachedMember:
		return PublishedMember, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnexpectedItemType, string(t))
}

// IsDetached reports whether t is a detached variant.
func (t Type) IsDetached() bool {
	return t == DetachedContent || t == DetachedMedia || t == DetachedMember
}

// ItemTypes expands a published kind into the item types selected by mode.
func (p PublishedType) ItemTypes(mode DetachedMode) ([]Type, error) {
	var attached, detached Type
	switch p {
	case PublishedContent:
		attached, detached = Content, DetachedContent
	case PublishedMedia:
		attached, detached = Media, DetachedMedia
	case PublishedMember:
		attached, detached = Member, DetachedMember
	default:
		return nil, fmt.Errorf("%w: published type %q", domain.ErrUnexpectedItemType, string(p))
	}

	switch mode {
	case IncludeDetached:
		return []Type{attached, detached}, nil
	case ExcludeDetached:
		return []Type{attached}, nil
	case OnlyDetached:
		return []Type{detached}, nil
	}
	return nil, fmt.Errorf("%w: detached mode %d", domain.ErrUnexpectedItemType, int(mode))
}

// ParsePublishedType reads a published type name.
func ParsePublishedType(s string) (PublishedType, error) {
	p := PublishedType(s)
	switch p {
	case PublishedContent, PublishedMedia, PublishedMember:
		return p, nil
	}
	return "", fmt.Errorf("%w: published type %q", domain.ErrUnexpectedItemType, s)
}

// DetachedMode selects how detached items take part in a query.
type DetachedMode int

// Detached modes. The zero value includes detached items.
const (
	IncludeDetached DetachedMode = iota
	ExcludeDetached
	OnlyDetached
)

func (m DetachedMode) String() string {
	switch m {
	case IncludeDetached:
		return "include"
	case ExcludeDetached:
		return "exclude"
	case OnlyDetached:
		return "only"
	}
	return fmt.Sprintf("DetachedMode(%d)", int(m))
}

// ParseDetachedMode reads "include", "exclude" or "only". Empty means include.
func ParseDetachedMode(s string) (DetachedMode, error) {
	switch s {
	case "", "include":
		return IncludeDetached, nil
	case "exclude":
		return ExcludeDetached, nil
	case "only":
		return OnlyDetached, nil
	}
	return 0, fmt.Errorf("%w: detached mode %q", domain.ErrUnexpectedItemType, s)
}
