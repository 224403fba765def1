package pptx

import "strings"

// TextFrame is a text body (p:txBody or a:txBody): an ordered list of paragraphs.
type TextFrame struct {
	el    *element
	owner *part
}

// Paragraphs returns the frame's paragraphs in document order.
func (f *TextFrame) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, p := range f.el.childrenNamed(nsDrawing, "p") {
		out = append(out, &Paragraph{el: p, owner: f.owner})
	}
	return out
}

// Text joins paragraph texts with newlines.
func (f *TextFrame) Text() string {
	paras := f.Paragraphs()
	texts := make([]string, len(paras))
	for i, p := range paras {
		texts[i] = p.Text()
	}
	return strings.Join(texts, "\n")
}

// SetText replaces the frame content with one paragraph per line. The first
// paragraph's properties and the first run's properties are kept as the
// template for the new content.
func (f *TextFrame) SetText(text string) {
	paras := f.el.childrenNamed(nsDrawing, "p")
	var first *element
	if len(paras) > 0 {
		first = paras[0]
		for _, p := range paras[1:] {
			f.el.removeChild(p)
		}
	} else {
		first = newElement(f.el, nsDrawing, "p", "a")
		f.el.appendChild(first)
	}

	var runProps *element
	if r := first.child(nsDrawing, "r"); r != nil {
		if rPr := r.child(nsDrawing, "rPr"); rPr != nil {
			runProps = rPr.clone()
		}
	}
	pPr := first.child(nsDrawing, "pPr")
	end := first.child(nsDrawing, "endParaRPr")
	first.children = nil
	if pPr != nil {
		first.appendChild(pPr)
	}

	fill := func(p *element, line string) {
		if line != "" {
			r := newElement(p, nsDrawing, "r", "a")
			p.appendChild(r)
			if runProps != nil {
				r.appendChild(runProps.clone())
			}
			t := newElement(r, nsDrawing, "t", "a")
			r.appendChild(t)
			t.setText(line)
		}
	}

	lines := strings.Split(text, "\n")
	fill(first, lines[0])
	if end != nil {
		first.appendChild(end)
	}
	prev := first
	for _, line := range lines[1:] {
		p := newElement(f.el, nsDrawing, "p", "a")
		if pPr != nil {
			p.appendChild(pPr.clone())
		}
		idx := indexOf(f.el, prev) + 1
		f.el.insertChild(idx, p)
		fill(p, line)
		if end != nil {
			p.appendChild(end.clone())
		}
		prev = p
	}
	f.owner.markDirty()
}

// SetLanguage stamps locale on every run of the frame.
func (f *TextFrame) SetLanguage(locale string) {
	for _, p := range f.Paragraphs() {
		for _, r := range p.Runs() {
			r.SetLanguage(locale)
		}
	}
}

func indexOf(parent, child *element) int {
	for i, c := range parent.children {
		if c == node(child) {
			return i
		}
	}
	return len(parent.children) - 1
}

// Paragraph is one a:p.
type Paragraph struct {
	el    *element
	owner *part
}

// Runs returns the paragraph's text runs (a:r) in document order. Fields and
// line breaks are not runs.
func (p *Paragraph) Runs() []*Run {
	var out []*Run
	for _, r := range p.el.childrenNamed(nsDrawing, "r") {
		out = append(out, &Run{el: r, owner: p.owner})
	}
	return out
}

// Text is the visible paragraph text including fields; breaks become "\v".
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, el := range p.el.elements() {
		switch {
		case el.is(nsDrawing, "r"), el.is(nsDrawing, "fld"):
			if t := el.child(nsDrawing, "t"); t != nil {
				sb.WriteString(t.text())
			}
		case el.is(nsDrawing, "br"):
			sb.WriteString("\v")
		}
	}
	return sb.String()
}

// Run is the smallest formatted span of text.
type Run struct {
	el    *element
	owner *part
}

// Text returns the run's text.
func (r *Run) Text() string {
	if t := r.el.child(nsDrawing, "t"); t != nil {
		return t.text()
	}
	return ""
}

// SetText replaces the run's text. Run properties are untouched.
func (r *Run) SetText(text string) {
	t := r.el.child(nsDrawing, "t")
	if t == nil {
		t = newElement(r.el, nsDrawing, "t", "a")
		r.el.appendChild(t)
	}
	t.setText(text)
	r.owner.markDirty()
}

// Language returns the run's lang attribute, if set.
func (r *Run) Language() string {
	if rPr := r.el.child(nsDrawing, "rPr"); rPr != nil {
		v, _ := rPr.attr("", "lang")
		return v
	}
	return ""
}

// SetLanguage sets a:rPr/@lang, creating a:rPr when the run has none. Other
// formatting attributes are left alone.
func (r *Run) SetLanguage(locale string) {
	rPr := r.el.child(nsDrawing, "rPr")
	if rPr == nil {
		rPr = newElement(r.el, nsDrawing, "rPr", "a")
		r.el.insertChild(0, rPr)
	}
	rPr.setAttr("lang", locale)
	r.owner.markDirty()
}
