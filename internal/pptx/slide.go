package pptx

// Slide is one slide of a presentation. Identity is its position.
type Slide struct {
	pres  *Presentation
	index int
	part  *part
}

// Index returns the zero-based position of the slide.
func (s *Slide) Index() int { return s.index }

// PartName returns the archive entry backing the slide, e.g. ppt/slides/slide1.xml.
func (s *Slide) PartName() string { return s.part.name }

// Shapes returns the top-level shapes of the slide in document order.
func (s *Slide) Shapes() []Shape {
	tree := s.part.doc.root.path(step(nsPresentation, "cSld"), step(nsPresentation, "spTree"))
	if tree == nil {
		return nil
	}
	return collectShapes(tree, s.part)
}

// Shape is implemented by TextShape, TableShape, GroupShape and OtherShape.
type Shape interface {
	// Name is the shape's cNvPr name, e.g. "Title 1".
	Name() string
	isShape()
}

type shapeBase struct {
	el *element
}

func (b shapeBase) Name() string {
	for _, c := range b.el.elements() {
		// nvSpPr, nvGrpSpPr, nvGraphicFramePr, nvPicPr, nvCxnSpPr
		if cnv := c.child(nsPresentation, "cNvPr"); cnv != nil {
			name, _ := cnv.attr("", "name")
			return name
		}
	}
	return ""
}

func (shapeBase) isShape() {}

// TextShape is an autoshape or placeholder with a text body.
type TextShape struct {
	shapeBase
	frame *TextFrame
}

// TextFrame returns the shape's text body.
func (s *TextShape) TextFrame() *TextFrame { return s.frame }

// TableShape is a graphic frame holding a DrawingML table.
type TableShape struct {
	shapeBase
	table *Table
}

// Table returns the table carried by the shape.
func (s *TableShape) Table() *Table { return s.table }

// GroupShape holds nested shapes.
type GroupShape struct {
	shapeBase
	owner *part
}

// Shapes returns the members of the group in document order.
func (s *GroupShape) Shapes() []Shape { return collectShapes(s.el, s.owner) }

// OtherShape is anything without translatable text: pictures, connectors,
// charts, empty autoshapes.
type OtherShape struct {
	shapeBase
}

func collectShapes(tree *element, owner *part) []Shape {
	var out []Shape
	for _, el := range tree.elements() {
		if el.uri() == nsPresentation {
			switch el.local {
			case "nvGrpSpPr", "grpSpPr", "extLst":
				continue
			}
		}
		out = append(out, classifyShape(el, owner))
	}
	return out
}

func classifyShape(el *element, owner *part) Shape {
	base := shapeBase{el: el}
	switch {
	case el.is(nsPresentation, "sp"):
		if body := el.child(nsPresentation, "txBody"); body != nil {
			return &TextShape{shapeBase: base, frame: &TextFrame{el: body, owner: owner}}
		}
	case el.is(nsPresentation, "grpSp"):
		return &GroupShape{shapeBase: base, owner: owner}
	case el.is(nsPresentation, "graphicFrame"):
		tbl := el.path(
			step(nsDrawing, "graphic"),
			step(nsDrawing, "graphicData"),
			step(nsDrawing, "tbl"),
		)
		if tbl != nil {
			return &TableShape{shapeBase: base, table: &Table{el: tbl, owner: owner}}
		}
	}
	return &OtherShape{shapeBase: base}
}

// Table is a DrawingML table.
type Table struct {
	el    *element
	owner *part
}

// Rows returns table rows in document order.
func (t *Table) Rows() []*Row {
	var out []*Row
	for _, tr := range t.el.childrenNamed(nsDrawing, "tr") {
		out = append(out, &Row{el: tr, owner: t.owner})
	}
	return out
}

// Row is one a:tr.
type Row struct {
	el    *element
	owner *part
}

// Cells returns the row's cells in document order.
func (r *Row) Cells() []*Cell {
	var out []*Cell
	for _, tc := range r.el.childrenNamed(nsDrawing, "tc") {
		out = append(out, &Cell{el: tc, owner: r.owner})
	}
	return out
}

// Cell is one a:tc.
type Cell struct {
	el    *element
	owner *part
}

// TextFrame returns the cell body, or nil when the cell has none.
func (c *Cell) TextFrame() *TextFrame {
	body := c.el.child(nsDrawing, "txBody")
	if body == nil {
		return nil
	}
	return &TextFrame{el: body, owner: c.owner}
}

// Merged reports whether the cell is covered by a neighbouring span.
func (c *Cell) Merged() bool {
	for _, name := range []string{"hMerge", "vMerge"} {
		if v, ok := c.el.attr("", name); ok && (v == "1" || v == "true") {
			return true
		}
	}
	return false
}
