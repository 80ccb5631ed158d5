package projection

import (
	"fmt"
	"strings"

	"easychat/domain"

	"github.com/google/uuid"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeHTML neutralizes the three markup-significant characters in
// user-controlled text. Nothing else is rewritten.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// BodyHTML renders a raw message body for display: the text is escaped first
// so it can never be interpreted as markup, then newline characters only are
// converted to line breaks.
func BodyHTML(body string) string {
	return strings.ReplaceAll(EscapeHTML(body), "\n", "<br>")
}

// entryTemplate mirrors the markup of one feed node.
const entryTemplate = `<div class="message-container" id="%s"><div class="spacing"><div class="pic" style="background-image:url(%s)"></div></div><div class="message">%s</div><div class="name">%s</div></div>`

func renderEntry(e Entry) string {
	author := e.Author
	if author == "" {
		// empty author in pre-existing data falls back to the sentinel
		author = domain.AnonymousLabel
	}
	avatar := e.AvatarRef
	if avatar == "" {
		avatar = domain.AvatarPlaceholder
	}
	return fmt.Sprintf(entryTemplate,
		e.ID, EscapeHTML(avatar), BodyHTML(e.Body), EscapeHTML(author))
}

// HTMLView materializes feed deltas into HTML nodes, one per entry ID.
// It is the rendering half of the feed: state arrival is handled by Feed,
// presentation by this type.
type HTMLView struct {
	order    []uuid.UUID
	nodes    map[uuid.UUID]string
	revealed uuid.UUID
}

func NewHTMLView() *HTMLView {
	return &HTMLView{nodes: make(map[uuid.UUID]string)}
}

// Patch applies rendering deltas: appended entries gain a new node at the end
// of the list, updated entries have their node replaced in place.
func (v *HTMLView) Patch(deltas []Delta) {
	for _, d := range deltas {
		if _, ok := v.nodes[d.Entry.ID]; !ok {
			v.order = append(v.order, d.Entry.ID)
		}
		v.nodes[d.Entry.ID] = renderEntry(d.Entry)
	}
}

// RevealLatest advances the scroll position to the newest node.
func (v *HTMLView) RevealLatest() {
	if len(v.order) > 0 {
		v.revealed = v.order[len(v.order)-1]
	}
}

// Revealed reports the entry currently scrolled into view.
func (v *HTMLView) Revealed() uuid.UUID {
	return v.revealed
}

// Len reports the number of rendered nodes.
func (v *HTMLView) Len() int {
	return len(v.order)
}

// Node returns the rendered markup for one entry ID.
func (v *HTMLView) Node(id uuid.UUID) (string, bool) {
	node, ok := v.nodes[id]
	return node, ok
}

// HTML returns the full rendered list in display order.
func (v *HTMLView) HTML() string {
	var b strings.Builder
	for _, id := range v.order {
		b.WriteString(v.nodes[id])
	}
	return b.String()
}
