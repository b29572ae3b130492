package views

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vango-dev/spa/pkg/component"
	"github.com/vango-dev/spa/pkg/vdom"
)

const noPostDoc = "No post doc yet..."

// Post shows one post with links to its neighbours. Its document is
// loaded by Refresh.
type Post struct {
	page
	source PostSource
	live   component.Liveness

	mu      sync.Mutex
	id      int
	invalid error
	doc     string
}

// NewPost returns a factory for posts loaded from source. A nil source
// leaves the document placeholder in place.
func NewPost(source PostSource) component.Factory {
	return func(props component.Props) component.Component {
		p := &Post{page: newPage("post", "SPA: Post"), source: source}
		p.OnPropsUpdated(props)
		return p
	}
}

// OnPropsUpdated validates postId. A bad id becomes error state.
func (p *Post) OnPropsUpdated(props component.Props) {
	id, err := component.ParseIntParam(props, "postId")

	p.mu.Lock()
	defer p.mu.Unlock()
	if err == nil && p.invalid == nil && id == p.id && p.doc != "" {
		return
	}
	p.id, p.invalid, p.doc = id, err, noPostDoc
}

func (p *Post) Render() {
	p.mu.Lock()
	id, invalid, doc := p.id, p.invalid, p.doc
	p.mu.Unlock()

	p.dom.Update(func(root *vdom.VNode) {
		setError(root, "post-error", "post-body", invalid)
		if invalid != nil {
			return
		}
		root.Find("post-id").SetText(fmt.Sprint(id))
		root.Find("prev-post").SetAttr("href", fmt.Sprintf("/posts/%d", id-1))
		root.Find("next-post").SetAttr("href", fmt.Sprintf("/posts/%d", id+1))
		root.Find("post-comments").SetAttr("href", fmt.Sprintf("/posts/%d/comments/1", id))
		root.Find("post-doc").SetText(doc)
	})
}

// Refresh loads the post document. Work started for a previous id is
// cancelled and its result dropped.
func (p *Post) Refresh(ctx context.Context) error {
	p.mu.Lock()
	id, invalid := p.id, p.invalid
	p.mu.Unlock()
	if invalid != nil || p.source == nil {
		return nil
	}

	ctx, alive := p.live.Begin(ctx)
	doc, err := p.source.Post(ctx, id)
	if errors.Is(err, ErrPostNotFound) {
		doc, err = fmt.Sprintf("Post %d does not exist.", id), nil
	}

	// BeforeUnmount cancels under p.mu, so alive() cannot flip between this
	// check and the writes below.
	p.mu.Lock()
	defer p.mu.Unlock()
	if !alive() || p.id != id {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load post %d: %w", id, err)
	}
	p.doc = doc
	p.dom.Update(func(root *vdom.VNode) {
		root.Find("post-doc").SetText(doc)
	})
	return nil
}

func (p *Post) BeforeUnmount() {
	p.mu.Lock()
	p.live.Cancel()
	p.mu.Unlock()
	p.page.BeforeUnmount()
}
