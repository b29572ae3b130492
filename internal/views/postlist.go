package views

import (
	"fmt"

	"github.com/vango-dev/spa/pkg/component"
	"github.com/vango-dev/spa/pkg/router"
	"github.com/vango-dev/spa/pkg/vdom"
)

// PostList links to the first count posts.
type PostList struct {
	page
	static
	count int
}

// NewPostList returns a factory for a list of count posts.
func NewPostList(count int) component.Factory {
	return func(component.Props) component.Component {
		l := &PostList{page: newPage("postlist", "SPA: Posts"), count: count}
		l.fill()
		return l
	}
}

func (l *PostList) fill() {
	l.dom.Update(func(root *vdom.VNode) {
		list := root.Find("post-list")
		list.Children = list.Children[:0]
		for id := 1; id <= l.count; id++ {
			list.Children = append(list.Children,
				vdom.Li(router.Link(fmt.Sprintf("/posts/%d", id), vdom.Textf("Post %d", id))))
		}
	})
}
