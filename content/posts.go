package content

import "sort"

// PageSet is the full set of posts of a build. Mentions are resolved against
// it, so it includes drafts.
type PageSet struct {
	posts []Post
}

// NewPageSet wraps posts. The slice is not copied.
func NewPageSet(posts []Post) *PageSet {
	return &PageSet{posts: posts}
}

// Lookup finds a post by id with a linear scan.
func (s *PageSet) Lookup(id string) (Post, bool) {
	if s == nil {
		return Post{}, false
	}
	for _, p := range s.posts {
		if p.ID == id {
			return p, true
		}
	}
	return Post{}, false
}

// Slug returns the slug of the post with the given id. ok is false for ids
// outside the set.
func (s *PageSet) Slug(id string) (slug string, ok bool) {
	p, ok := s.Lookup(id)
	if !ok {
		return "", false
	}
	return p.Slug, true
}

// All returns the underlying posts.
func (s *PageSet) All() []Post {
	if s == nil {
		return nil
	}
	return s.posts
}

// Publishable returns posts that get a page: published and slugged.
func Publishable(posts []Post) []Post {
	var out []Post
	for _, p := range posts {
		if p.Published && p.Slug != "" {
			out = append(out, p)
		}
	}
	return out
}

// ForLanguage filters posts by language code.
func ForLanguage(posts []Post, lang string) []Post {
	var out []Post
	for _, p := range posts {
		if p.Language == lang {
			out = append(out, p)
		}
	}
	return out
}

// SortByDateDesc orders posts newest first. Undated posts sort last; ties
// keep their input order.
func SortByDateDesc(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i].Date, posts[j].Date
		if a.IsZero() != b.IsZero() {
			return b.IsZero()
		}
		return a.After(b)
	})
}

// Walk calls fn for every block of the tree in document order, descending
// into toggle children.
func Walk(blocks []Block, fn func(Block)) {
	for _, b := range blocks {
		fn(b)
		if t, ok := b.Value.(Toggle); ok {
			Walk(t.Children, fn)
		}
	}
}
