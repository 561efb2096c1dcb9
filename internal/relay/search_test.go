package relay

import (
	"context"
	"testing"
)

func TestSearchByTag(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	run := mustCreateThanks(t, svc, "alice", "Morning jog", "run")
	mustCreateThanks(t, svc, "bob", "Long distance", "running")
	mustCreateThanks(t, svc, "carol", "No tags here")

	posts, err := svc.Search(ctx, "run", SearchByTag)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	// Tag match is exact membership, not prefix.
	if len(posts) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(posts))
	}
	if posts[0].ID != run.ID {
		t.Errorf("Expected %s, got %s", run.ID, posts[0].ID)
	}
}

func TestSearchByTagEscapesPatterns(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	mustCreateThanks(t, svc, "alice", "Morning jog", "health")
	mustCreateThanks(t, svc, "bob", "Desk setup", "work")

	// LIKE metacharacters in the query must not act as wildcards.
	for _, q := range []string{"%", "he%th", "_ealth", "wor_", `\`} {
		posts, err := svc.Search(ctx, q, SearchByTag)
		if err != nil {
			t.Fatalf("Search(%q) failed: %v", q, err)
		}
		if len(posts) != 0 {
			t.Errorf("Search(%q): expected no matches, got %d", q, len(posts))
		}
	}
}

func TestSearchByTagEncodedCharacters(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	// & is escaped in the stored JSON encoding; lookups must still hit it.
	tagged := mustCreateThanks(t, svc, "alice", "Lab shoutout", "r&d")
	mustCreateThanks(t, svc, "bob", "No tags here")

	posts, err := svc.Search(ctx, "r&d", SearchByTag)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != tagged.ID {
		t.Errorf("Expected the tagged post, got %d matches", len(posts))
	}
}

func TestSearchByContent(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	mustCreateThanks(t, svc, "alice", "Thanks for the COFFEE this morning")
	mustCreateThanks(t, svc, "bob", "coffee break was great")
	mustCreateThanks(t, svc, "carol", "Thanks for the tea")

	posts, err := svc.Search(ctx, "Coffee", SearchByContent)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(posts) != 2 {
		t.Errorf("Expected 2 case-insensitive matches, got %d", len(posts))
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	svc, _ := newPostService(t)

	mustCreateThanks(t, svc, "alice", "something")

	for _, q := range []string{"", "   "} {
		posts, err := svc.Search(context.Background(), q, SearchByContent)
		if err != nil {
			t.Fatalf("Search(%q) failed: %v", q, err)
		}
		if len(posts) != 0 {
			t.Errorf("Search(%q): expected no results, got %d", q, len(posts))
		}
	}
}

func TestSearchUnknownType(t *testing.T) {
	svc, _ := newPostService(t)

	mustCreateThanks(t, svc, "alice", "something", "tag")

	posts, err := svc.Search(context.Background(), "something", "author")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("Expected no results for unknown search type, got %d", len(posts))
	}
}
