package domain

import "sort"

// Comment is a discussion entry on a product.
// Tree-structured via a nullable parent reference; the tree is reconstructed
// in memory from the flat row set (see BuildCommentTree).
type Comment struct {
	Record
	ProductID string  `json:"product_id"`
	UserID    string  `json:"user_id"`
	ParentID  *string `json:"parent_id,omitempty"`
	Body      string  `json:"body"`
}

// CommentNode is a comment with its resolved replies.
type CommentNode struct {
	*Comment
	Replies []*CommentNode `json:"replies"`
}

// BuildCommentTree reconstructs the reply tree from a flat comment list.
//
// Two passes: every comment first gets a node in an id-keyed map, then each
// node is appended to its parent's reply list. A comment whose parent id is
// unknown, or whose parent chain loops back onto itself, is attached to the
// root instead of being dropped or looping forever.
//
// Ordering is creation time descending at every level, with ID as the
// tie-breaker, so rebuilding from the same input always yields the same tree.
func BuildCommentTree(comments []*Comment) []*CommentNode {
	nodes := make(map[string]*CommentNode, len(comments))
	byID := make(map[string]*Comment, len(comments))
	for _, c := range comments {
		nodes[c.ID] = &CommentNode{Comment: c, Replies: []*CommentNode{}}
		byID[c.ID] = c
	}

	var roots []*CommentNode
	for _, c := range comments {
		node := nodes[c.ID]
		if c.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*c.ParentID]
		if !ok || formsCycle(c, byID) {
			// Referential gap or malformed parent chain: surface at the root
			// rather than losing the subtree.
			roots = append(roots, node)
			continue
		}
		parent.Replies = append(parent.Replies, node)
	}

	sortNodes(roots)
	for _, n := range nodes {
		sortNodes(n.Replies)
	}

	return roots
}

// formsCycle reports whether following c's parent chain revisits c.
// The walk is bounded by a visited set, so a pre-existing loop among
// ancestors terminates too.
func formsCycle(c *Comment, byID map[string]*Comment) bool {
	visited := map[string]bool{c.ID: true}
	cur := c.ParentID
	for cur != nil {
		if visited[*cur] {
			return true
		}
		visited[*cur] = true
		parent, ok := byID[*cur]
		if !ok {
			return false
		}
		cur = parent.ParentID
	}
	return false
}

// sortNodes orders siblings newest-first, ID as tie-breaker.
func sortNodes(nodes []*CommentNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if !nodes[i].CreatedAt.Equal(nodes[j].CreatedAt) {
			return nodes[i].CreatedAt.After(nodes[j].CreatedAt)
		}
		return nodes[i].ID < nodes[j].ID
	})
}
