package model

// TagSet is an insertion-ordered string set used for skills and interests.
type TagSet struct {
	items []string
}

func NewTagSet(values ...string) *TagSet {
	s := &TagSet{}
	for _, v := range values {
		if !s.Contains(v) {
			s.items = append(s.items, v)
		}
	}
	return s
}

func (s *TagSet) Contains(v string) bool {
	for _, item := range s.items {
		if item == v {
			return true
		}
	}
	return false
}

// Toggle adds v when absent and removes it when present. It reports whether v is now in the set.
func (s *TagSet) Toggle(v string) bool {
	for i, item := range s.items {
		if item == v {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return false
		}
	}
	s.items = append(s.items, v)
	return true
}

func (s *TagSet) Len() int {
	return len(s.items)
}

// Values returns a copy; never nil so it serializes as [].
func (s *TagSet) Values() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Equal compares membership only.
func (s *TagSet) Equal(o *TagSet) bool {
	if s.Len() != o.Len() {
		return false
	}
	for _, item := range s.items {
		if !o.Contains(item) {
			return false
		}
	}
	return true
}
