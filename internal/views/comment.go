package views

import (
	"context"
	"fmt"
	"sync"

	"github.com/vango-dev/spa/pkg/component"
	"github.com/vango-dev/spa/pkg/vdom"
)

// Comment shows a comment on a post.
type Comment struct {
	page

	mu        sync.Mutex
	postID    int
	commentID int
	text      string
	invalid   error
}

func NewComment(props component.Props) component.Component {
	c := &Comment{page: newPage("comment", "SPA: Comment")}
	c.OnPropsUpdated(props)
	return c
}

func (c *Comment) OnPropsUpdated(props component.Props) {
	postID, err := component.ParseIntParam(props, "postId")
	var commentID int
	if err == nil {
		commentID, err = component.ParseIntParam(props, "commentId")
	}
	text := props["commentText"]
	if text == "" {
		text = "No comment text yet..."
	}

	c.mu.Lock()
	c.postID, c.commentID, c.text, c.invalid = postID, commentID, text, err
	c.mu.Unlock()
}

func (c *Comment) Render() {
	c.mu.Lock()
	postID, commentID, text, invalid := c.postID, c.commentID, c.text, c.invalid
	c.mu.Unlock()

	c.dom.Update(func(root *vdom.VNode) {
		setError(root, "comment-error", "comment-body", invalid)
		if invalid != nil {
			return
		}
		root.Find("post-id").SetText(fmt.Sprint(postID))
		root.Find("comment-id").SetText(fmt.Sprint(commentID))
		root.Find("comment-text").SetText(text)
		root.Find("back-to-post").SetAttr("href", fmt.Sprintf("/posts/%d", postID))
	})
}

func (c *Comment) Refresh(context.Context) error { return nil }
