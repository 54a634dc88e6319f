package page

import (
	"io"
	"strings"
	"sync"

	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"golang.org/x/net/html"
)

// Listener receives dispatched events.
type Listener func(ev Event)

// HTMLDocument is a Document over a parsed HTML page, such as a saved PR edit
// form. Listeners registered on an element also see events bubbling up from
// its descendants; listeners registered with an empty id see every bubbling
// event, like listeners on document.
type HTMLDocument struct {
	mu        sync.Mutex
	root      *html.Node
	listeners map[*html.Node]map[string][]Listener
}

func ParseHTML(r io.Reader) (*HTMLDocument, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, domainErrors.NewAppError(domainErrors.TypePage, "Failed to parse page", err)
	}
	return &HTMLDocument{
		root:      root,
		listeners: make(map[*html.Node]map[string][]Listener),
	}, nil
}

func (d *HTMLDocument) GetElementByID(id string) (Element, bool) {
	n := findByID(d.root, id)
	if n == nil {
		return nil, false
	}
	return &htmlElement{doc: d, node: n}, true
}

// AddEventListener registers fn for eventType on the element with id, or on
// the document when id is empty. It reports false when no element has id.
func (d *HTMLDocument) AddEventListener(id, eventType string, fn Listener) bool {
	target := d.root
	if id != "" {
		if target = findByID(d.root, id); target == nil {
			return false
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.listeners[target] == nil {
		d.listeners[target] = make(map[string][]Listener)
	}
	d.listeners[target][eventType] = append(d.listeners[target][eventType], fn)
	return true
}

// Render writes the current document.
func (d *HTMLDocument) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

func (d *HTMLDocument) dispatch(target *html.Node, ev Event) {
	for n := target; n != nil; n = n.Parent {
		d.mu.Lock()
		fns := append([]Listener(nil), d.listeners[n][ev.Type]...)
		d.mu.Unlock()
		for _, fn := range fns {
			fn(ev)
		}
		if !ev.Bubbles {
			return
		}
	}
}

type htmlElement struct {
	doc  *HTMLDocument
	node *html.Node
}

// SetValue replaces the text of a textarea, or the value attribute of any
// other element.
func (e *htmlElement) SetValue(value string) {
	if e.node.Data != "textarea" {
		setAttr(e.node, "value", value)
		return
	}
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: value})
}

func (e *htmlElement) DispatchEvent(ev Event) {
	e.doc.dispatch(e.node, ev)
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
