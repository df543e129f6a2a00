package store

import (
	"sort"
	"strings"

	"github.com/dropDatabas3/adminconsole/internal/post"
	"github.com/dropDatabas3/adminconsole/internal/user"
)

func sortMenus(nodes []user.MenuNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Sort != nodes[j].Sort {
			return nodes[i].Sort < nodes[j].Sort
		}
		return nodes[i].ID < nodes[j].ID
	})
}

// matchPost filtros de la búsqueda paginada (name/code contienen, status igual).
func matchPost(p post.Post, q post.PageParam) bool {
	if q.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Name)) {
		return false
	}
	if q.Code != "" && !strings.Contains(strings.ToLower(p.Code), strings.ToLower(q.Code)) {
		return false
	}
	if q.Status != nil && p.Status != *q.Status {
		return false
	}
	return true
}

func offset(p post.PageParam) int {
	return (p.PageNo - 1) * p.PageSize
}
