package relay

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/thanksrelay/relay/internal/models"
)

// Search types
const (
	SearchByTag     = "tag"
	SearchByContent = "content"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// jsonMemberPattern builds a LIKE pattern matching exactly one element of
// a JSON-encoded list column. The value is marshalled the same way the
// column was, so encoder escapes line up, and LIKE metacharacters are
// escaped so user input cannot act as a wildcard. Pair with ESCAPE '\'.
func jsonMemberPattern(v string) string {
	encoded, _ := json.Marshal(v)
	return "%" + likeEscaper.Replace(string(encoded)) + "%"
}

// Search finds posts by exact tag membership or case-insensitive text
// substring, newest first. Content search fetches the whole timestamp-
// ordered set and filters in memory; the cost is linear in the post count
// and acceptable only at small scale.
func (s *PostService) Search(ctx context.Context, queryText, searchType string) ([]*models.Post, error) {
	trimmed := strings.TrimSpace(queryText)
	if trimmed == "" {
		return []*models.Post{}, nil
	}

	switch searchType {
	case SearchByTag:
		var posts []*models.Post
		if err := s.db.WithContext(ctx).
			Where(`tags LIKE ? ESCAPE '\'`, jsonMemberPattern(trimmed)).
			Order("timestamp DESC").
			Find(&posts).Error; err != nil {
			return nil, err
		}
		return posts, nil
	case SearchByContent:
		all, err := s.posts.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		return filterByContent(all, trimmed), nil
	default:
		s.logger.Warn("unknown search type", zap.String("type", searchType))
		return []*models.Post{}, nil
	}
}

func filterByContent(posts []*models.Post, query string) []*models.Post {
	lower := strings.ToLower(query)
	matched := make([]*models.Post, 0)
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Text), lower) {
			matched = append(matched, p)
		}
	}
	return matched
}
