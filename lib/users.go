package lib

import (
	"sort"
	"strings"

	shared "storybox-cli/shared"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// SearchUsers ranks users by how closely their username, full name or email
// matches query. An empty query returns users unchanged.
func SearchUsers(users []*shared.User, query string) []*shared.User {
	query = strings.TrimSpace(query)
	if query == "" {
		return users
	}

	best := map[int]int{}
	for i, u := range users {
		for _, target := range []string{u.UserName, u.FullName(), u.Email} {
			if target == "" {
				continue
			}
			d := fuzzy.RankMatchNormalizedFold(query, target)
			if d < 0 {
				continue
			}
			if prev, ok := best[i]; !ok || d < prev {
				best[i] = d
			}
		}
	}

	idx := make([]int, 0, len(best))
	for i := range best {
		idx = append(idx, i)
	}
	sort.Slice(idx, func(a, b int) bool {
		if best[idx[a]] != best[idx[b]] {
			return best[idx[a]] < best[idx[b]]
		}
		return idx[a] < idx[b]
	})

	res := make([]*shared.User, 0, len(idx))
	for _, i := range idx {
		res = append(res, users[i])
	}
	return res
}
