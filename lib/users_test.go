package lib

import (
	"testing"

	shared "storybox-cli/shared"

	"github.com/stretchr/testify/assert"
)

func TestSearchUsers(t *testing.T) {
	first := "Dana"
	users := []*shared.User{
		{Id: "1", UserName: "bob", Email: "bob@x.io"},
		{Id: "2", UserName: "dscully", FirstName: &first, Email: "d@x.io"},
		{Id: "3", UserName: "danny", Email: "danny@x.io"},
	}

	ids := func(us []*shared.User) []string {
		var res []string
		for _, u := range us {
			res = append(res, u.Id)
		}
		return res
	}

	assert.Equal(t, []string{"1", "2", "3"}, ids(SearchUsers(users, "")))
	assert.Equal(t, []string{"1"}, ids(SearchUsers(users, "bob")))
	assert.ElementsMatch(t, []string{"2", "3"}, ids(SearchUsers(users, "DAN")))
	assert.Empty(t, SearchUsers(users, "zzz"))
}
