package bookmarkfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// NodeKind discriminates the two shapes a bookmark tree node can take
type NodeKind string

const (
	KindLink   NodeKind = "link"
	KindFolder NodeKind = "folder"
)

var ErrUnknownKind = errors.New("unknown node kind")

// Node is a single entry in a parsed bookmark tree. Links carry a URL and
// never have children; folders carry children and never have a URL.
type Node struct {
	Kind     NodeKind  `json:"kind"`
	Title    string    `json:"title"`
	URL      string    `json:"url,omitempty"`
	Icon     string    `json:"icon,omitempty"`
	AddedAt  time.Time `json:"added_at"`
	Children []Node    `json:"children,omitempty"`
}

// nodeAlias avoids infinite recursion in UnmarshalJSON
type nodeAlias struct {
	Kind     NodeKind  `json:"kind"`
	Title    string    `json:"title"`
	URL      string    `json:"url"`
	Icon     string    `json:"icon"`
	AddedAt  time.Time `json:"added_at"`
	Children []Node    `json:"children"`
}

// UnmarshalJSON accepts both explicitly tagged nodes and browser-style
// JSON where the kind is implied: entries with a children array are
// folders, everything else is a link.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw nodeAlias
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Node(raw)
	if n.Kind == "" {
		if raw.Children != nil {
			n.Kind = KindFolder
		} else {
			n.Kind = KindLink
		}
	}
	return nil
}

// Validate checks that every node in the tree carries a known kind.
func (n Node) Validate() error {
	switch n.Kind {
	case KindLink:
		return nil
	case KindFolder:
		for _, child := range n.Children {
			if err := child.Validate(); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, n.Kind)
	}
}

// ValidateAll validates a whole forest.
func ValidateAll(nodes []Node) error {
	for _, node := range nodes {
		if err := node.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of link and folder nodes in the forest,
// counting nested nodes at any depth.
func Count(nodes []Node) (links, folders int) {
	for _, node := range nodes {
		switch node.Kind {
		case KindLink:
			links++
		case KindFolder:
			folders++
			subLinks, subFolders := Count(node.Children)
			links += subLinks
			folders += subFolders
		}
	}
	return
}
