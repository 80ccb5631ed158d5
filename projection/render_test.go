package projection

import (
	"strings"
	"testing"
	"time"

	"easychat/domain/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestBodyHTML_ScriptRendersAsLiteralText(t *testing.T) {
	req := require.New(t)

	out := BodyHTML(`<script>alert("xss")</script>`)

	req.NotContains(out, "<script>")
	req.Contains(out, "&lt;script&gt;")
}

func TestBodyHTML_NewlinesBecomeLineBreaks(t *testing.T) {
	req := require.New(t)

	out := BodyHTML("a\nb")

	req.Equal("a<br>b", out)
}

func TestBodyHTML_OnlyNewlinesAreInterpreted(t *testing.T) {
	req := require.New(t)

	// markdown-ish or html-ish content must stay literal
	out := BodyHTML("**bold** & <b>1 > 2</b>")

	req.Equal("**bold** &amp; &lt;b&gt;1 &gt; 2&lt;/b&gt;", out)
}

func TestHTMLView_PatchAndReveal(t *testing.T) {
	req := require.New(t)
	view := NewHTMLView()

	first := Entry{ID: uuid.New(), Author: "Alice", Body: "Hello", CreatedAt: time.Now()}
	second := Entry{ID: uuid.New(), Author: "Bob", Body: "Hi", CreatedAt: time.Now()}

	view.Patch([]Delta{{Kind: Appended, Entry: first}})
	view.RevealLatest()
	req.Equal(first.ID, view.Revealed())

	view.Patch([]Delta{{Kind: Appended, Entry: second}})
	view.RevealLatest()
	req.Equal(second.ID, view.Revealed())
	req.Equal(2, view.Len())

	html := view.HTML()
	req.True(strings.Index(html, "Hello") < strings.Index(html, "Hi"),
		"nodes must appear in delivery order")
}

func TestHTMLView_UpdateReplacesNodeInPlace(t *testing.T) {
	req := require.New(t)
	view := NewHTMLView()
	id := uuid.New()

	view.Patch([]Delta{{Kind: Appended, Entry: Entry{ID: id, Author: "", Body: "Hello"}}})
	node, ok := view.Node(id)
	req.True(ok)
	req.Contains(node, "anonymous")

	view.Patch([]Delta{{Kind: Updated, Entry: Entry{ID: id, Author: "alice@example.com", Body: "Hello"}}})
	node, _ = view.Node(id)
	req.Contains(node, "alice@example.com")
	req.Equal(1, view.Len())
}

func TestHTMLView_PlaceholderAvatarWhenMissing(t *testing.T) {
	req := require.New(t)
	view := NewHTMLView()
	id := uuid.New()

	view.Patch([]Delta{{Kind: Appended, Entry: Entry{ID: id, Author: "Alice", Body: "hi"}}})

	node, _ := view.Node(id)
	req.Contains(node, "/images/profile_placeholder.png")
}

func TestHTMLView_EndToEndWithFeed(t *testing.T) {
	req := require.New(t)
	feed := NewFeed()
	view := NewHTMLView()

	m := message("Alice", "line1\nline2", time.Now().UTC())
	view.Patch(feed.Apply(event.AddedBatch(m)))

	node, ok := view.Node(m.ID)
	req.True(ok)
	req.Contains(node, "line1<br>line2")
}
