package relay

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/thanksrelay/relay/internal/models"
)

// ChainPost is a post annotated with the id it replies to within its
// chain. The root's ReplyTo is nil; every other entry points at its
// direct parent.
type ChainPost struct {
	*models.Post
	ReplyTo *string `json:"replyTo"`
}

// GetPostChain returns the full chain the given post belongs to, root
// first, ordered ascending by depth. When the recorded root document is
// missing the start post is returned alone rather than failing the whole
// lookup.
func (s *PostService) GetPostChain(ctx context.Context, postID string) ([]*ChainPost, error) {
	start, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if start == nil {
		return nil, ErrPostNotFound
	}

	rootID := start.RootID()
	root, err := s.posts.GetByID(ctx, rootID)
	if err != nil {
		return nil, err
	}
	if root == nil {
		// Dangling action whose root was deleted: return what we have.
		s.logger.Warn("chain root missing",
			zap.String("post_id", postID),
			zap.String("root_id", rootID))
		return []*ChainPost{chainEntry(start)}, nil
	}

	members, err := s.posts.GetByRoot(ctx, rootID)
	if err != nil {
		return nil, err
	}

	return assembleChain(root, members), nil
}

// chainEntry maps a post's parent linkage onto ReplyTo
func chainEntry(p *models.Post) *ChainPost {
	entry := &ChainPost{Post: p}
	if !p.IsRoot() {
		entry.ReplyTo = p.ParentPostID
	}
	return entry
}

// assembleChain orders the root plus its descendants ascending by depth,
// breaking depth ties by timestamp so the order is stable across reads.
func assembleChain(root *models.Post, members []*models.Post) []*ChainPost {
	chain := make([]*ChainPost, 0, len(members)+1)
	chain = append(chain, &ChainPost{Post: root})
	for _, p := range members {
		if p.ID == root.ID {
			continue
		}
		chain = append(chain, chainEntry(p))
	}

	sort.SliceStable(chain, func(i, j int) bool {
		if chain[i].Depth != chain[j].Depth {
			return chain[i].Depth < chain[j].Depth
		}
		return chain[i].Timestamp.Before(chain[j].Timestamp)
	})

	return chain
}
