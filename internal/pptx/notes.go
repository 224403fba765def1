package pptx

import (
	"fmt"
	"strconv"
)

// HasNotes reports whether the slide has a notes slide part.
func (s *Slide) HasNotes() bool {
	pt, err := s.notesPart()
	return err == nil && pt != nil
}

// Notes returns the body placeholder of the slide's notes, if any.
func (s *Slide) Notes() (*TextFrame, bool) {
	pt, err := s.notesPart()
	if err != nil || pt == nil {
		return nil, false
	}
	sp := notesBody(pt.doc.root)
	if sp == nil {
		return nil, false
	}
	body := sp.child(nsPresentation, "txBody")
	if body == nil {
		return nil, false
	}
	return &TextFrame{el: body, owner: pt}, true
}

// EnsureNotes returns the notes body, creating the notes slide (and a notes
// master when the deck has none) on demand.
func (s *Slide) EnsureNotes() (*TextFrame, error) {
	if frame, ok := s.Notes(); ok {
		return frame, nil
	}

	pt, err := s.notesPart()
	if err != nil {
		return nil, err
	}
	if pt == nil {
		pt, err = s.pres.createNotesSlide(s)
		if err != nil {
			return nil, fmt.Errorf("create notes slide for %s: %w", s.part.name, err)
		}
	}

	sp := notesBody(pt.doc.root)
	if sp == nil {
		if err := addNotesBodyPlaceholder(pt); err != nil {
			return nil, err
		}
		sp = notesBody(pt.doc.root)
	}
	body := sp.child(nsPresentation, "txBody")
	if body == nil {
		body = newElement(sp, nsPresentation, "txBody", "p")
		sp.appendChild(body)
		pt.markDirty()
	}
	frame := &TextFrame{el: body, owner: pt}
	if len(frame.Paragraphs()) == 0 {
		frame.SetText("")
	}
	return frame, nil
}

func (s *Slide) notesPart() (*part, error) {
	rels, err := s.pres.relationships(s.part.name)
	if err != nil {
		return nil, err
	}
	rel, ok := rels.firstOfType(relTypeNotesSlide)
	if !ok {
		return nil, nil
	}
	return s.pres.part(resolveTarget(s.part.name, rel.Target))
}

// notesBody finds the sp holding the body placeholder of a notes slide.
func notesBody(root *element) *element {
	tree := root.path(step(nsPresentation, "cSld"), step(nsPresentation, "spTree"))
	if tree == nil {
		return nil
	}
	for _, sp := range tree.childrenNamed(nsPresentation, "sp") {
		ph := sp.path(step(nsPresentation, "nvSpPr"), step(nsPresentation, "nvPr"), step(nsPresentation, "ph"))
		if ph == nil {
			continue
		}
		if typ, _ := ph.attr("", "type"); typ == "body" {
			return sp
		}
	}
	return nil
}

func addNotesBodyPlaceholder(pt *part) error {
	tree := pt.doc.root.path(step(nsPresentation, "cSld"), step(nsPresentation, "spTree"))
	if tree == nil {
		return fmt.Errorf("notes slide %s has no shape tree", pt.name)
	}
	frag, err := parseDocument([]byte(fmt.Sprintf(notesBodyShapeXML, nextShapeID(tree))))
	if err != nil {
		return err
	}
	sp := frag.root.child(nsPresentation, "sp")
	frag.root.removeChild(sp)
	// Prefixes in the fragment match the PresentationML defaults.
	tree.prefixFor(nsPresentation, "p")
	tree.prefixFor(nsDrawing, "a")
	tree.appendChild(sp)
	pt.markDirty()
	return nil
}

func nextShapeID(tree *element) int {
	max := 1
	var walk func(*element)
	walk = func(el *element) {
		if el.is(nsPresentation, "cNvPr") {
			if v, ok := el.attr("", "id"); ok {
				if n, err := strconv.Atoi(v); err == nil && n > max {
					max = n
				}
			}
		}
		for _, c := range el.elements() {
			walk(c)
		}
	}
	walk(tree)
	return max + 1
}

func (p *Presentation) createNotesSlide(s *Slide) (*part, error) {
	master, err := p.ensureNotesMaster()
	if err != nil {
		return nil, err
	}

	name := p.nextPartName("ppt/notesSlides/notesSlide")
	doc, err := parseDocument([]byte(notesSlideXML))
	if err != nil {
		return nil, err
	}
	pt, err := p.addPart(name, contentTypeNotes, doc, nil)
	if err != nil {
		return nil, err
	}

	notesRels, err := p.relationships(name)
	if err != nil {
		return nil, err
	}
	if _, err := notesRels.add(p, relTypeNotesMaster, master); err != nil {
		return nil, err
	}
	if _, err := notesRels.add(p, relTypeSlide, s.part.name); err != nil {
		return nil, err
	}

	slideRels, err := p.relationships(s.part.name)
	if err != nil {
		return nil, err
	}
	if _, err := slideRels.add(p, relTypeNotesSlide, name); err != nil {
		return nil, err
	}
	return pt, nil
}

// ensureNotesMaster returns the notes master part name, creating one (with
// a copy of the deck's first theme) when the presentation has none.
func (p *Presentation) ensureNotesMaster() (string, error) {
	presRels, err := p.relationships(presentationPart)
	if err != nil {
		return "", err
	}
	if rel, ok := presRels.firstOfType(relTypeNotesMaster); ok {
		return resolveTarget(presentationPart, rel.Target), nil
	}

	themes := p.partsWithPrefix("ppt/theme/theme")
	if len(themes) == 0 {
		return "", fmt.Errorf("%w: no theme to base a notes master on", ErrInvalidDocument)
	}
	themeData, err := p.readRaw(themes[0])
	if err != nil {
		return "", err
	}
	themeName := p.nextPartName("ppt/theme/theme")
	if _, err := p.addPart(themeName, contentTypeTheme, nil, themeData); err != nil {
		return "", err
	}

	masterName := p.nextPartName("ppt/notesMasters/notesMaster")
	doc, err := parseDocument([]byte(notesMasterXML))
	if err != nil {
		return "", err
	}
	if _, err := p.addPart(masterName, contentTypeNotesMstr, doc, nil); err != nil {
		return "", err
	}
	masterRels, err := p.relationships(masterName)
	if err != nil {
		return "", err
	}
	if _, err := masterRels.add(p, relTypeTheme, themeName); err != nil {
		return "", err
	}

	rid, err := presRels.add(p, relTypeNotesMaster, masterName)
	if err != nil {
		return "", err
	}
	if err := p.registerNotesMaster(rid); err != nil {
		return "", err
	}
	return masterName, nil
}

// registerNotesMaster adds p:notesMasterIdLst right after p:sldMasterIdLst.
func (p *Presentation) registerNotesMaster(rid string) error {
	pres, err := p.part(presentationPart)
	if err != nil {
		return err
	}
	root := pres.doc.root
	list := newElement(root, nsPresentation, "notesMasterIdLst", "p")
	entry := newElement(root, nsPresentation, "notesMasterId", "p")
	rPrefix := root.prefixFor(nsOfficeRels, "r")
	entry.attrs = append(entry.attrs, xmlAttr(rPrefix, "id", rid))
	list.appendChild(entry)

	idx := 0
	for i, c := range root.children {
		if el, ok := c.(*element); ok && el.is(nsPresentation, "sldMasterIdLst") {
			idx = i + 1
			break
		}
	}
	root.insertChild(idx, list)
	pres.markDirty()
	return nil
}

const notesBodyShapeXML = `<p:spTree xmlns:p="` + nsPresentation + `" xmlns:a="` + nsDrawing + `">` +
	`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="Notes Placeholder"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr>` +
	`<p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr><p:spPr/>` +
	`<p:txBody><a:bodyPr/><a:lstStyle/><a:p><a:endParaRPr lang="en-US"/></a:p></p:txBody></p:sp></p:spTree>`

const notesSlideXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:notes xmlns:a="` + nsDrawing + `" xmlns:r="` + nsOfficeRels + `" xmlns:p="` + nsPresentation + `">` +
	`<p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
	`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Slide Image Placeholder 1"/><p:cNvSpPr><a:spLocks noGrp="1" noRot="1" noChangeAspect="1"/></p:cNvSpPr>` +
	`<p:nvPr><p:ph type="sldImg"/></p:nvPr></p:nvSpPr><p:spPr/></p:sp>` +
	`<p:sp><p:nvSpPr><p:cNvPr id="3" name="Notes Placeholder 2"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr>` +
	`<p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr><p:spPr/>` +
	`<p:txBody><a:bodyPr/><a:lstStyle/><a:p><a:endParaRPr lang="en-US"/></a:p></p:txBody></p:sp>` +
	`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:notes>`

const notesMasterXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:notesMaster xmlns:a="` + nsDrawing + `" xmlns:r="` + nsOfficeRels + `" xmlns:p="` + nsPresentation + `">` +
	`<p:cSld><p:bg><p:bgRef idx="1001"><a:schemeClr val="bg1"/></p:bgRef></p:bg><p:spTree>` +
	`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>` +
	`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Slide Image Placeholder 1"/><p:cNvSpPr><a:spLocks noGrp="1" noRot="1" noChangeAspect="1"/></p:cNvSpPr>` +
	`<p:nvPr><p:ph type="sldImg" idx="2"/></p:nvPr></p:nvSpPr>` +
	`<p:spPr><a:xfrm><a:off x="1143000" y="685800"/><a:ext cx="4572000" cy="3429000"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom>` +
	`<a:noFill/><a:ln w="12700"><a:solidFill><a:prstClr val="black"/></a:solidFill></a:ln></p:spPr></p:sp>` +
	`<p:sp><p:nvSpPr><p:cNvPr id="3" name="Notes Placeholder 2"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr>` +
	`<p:nvPr><p:ph type="body" sz="quarter" idx="3"/></p:nvPr></p:nvSpPr>` +
	`<p:spPr><a:xfrm><a:off x="685800" y="4343400"/><a:ext cx="5486400" cy="4114800"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>` +
	`<p:txBody><a:bodyPr vert="horz" lIns="91440" tIns="45720" rIns="91440" bIns="45720" rtlCol="0"/><a:lstStyle/>` +
	`<a:p><a:pPr lvl="0"/><a:r><a:rPr lang="en-US"/><a:t>Click to edit Master text styles</a:t></a:r></a:p></p:txBody></p:sp>` +
	`</p:spTree></p:cSld>` +
	`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
	`<p:notesStyle><a:lvl1pPr marL="0" algn="l" defTabSz="914400" rtl="0" eaLnBrk="1" latinLnBrk="0" hangingPunct="1">` +
	`<a:defRPr sz="1200" kern="1200"><a:solidFill><a:schemeClr val="tx1"/></a:solidFill><a:latin typeface="+mn-lt"/><a:ea typeface="+mn-ea"/><a:cs typeface="+mn-cs"/></a:defRPr>` +
	`</a:lvl1pPr></p:notesStyle></p:notesMaster>`
