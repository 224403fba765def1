package testsupport

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Shape describes one shape of a generated test deck. Exactly one of
// Paragraphs, Rows, Members or Picture is meaningful.
type Shape struct {
	Name       string
	Paragraphs [][]string      // runs per paragraph
	Rows       [][]string      // table cell texts per row
	Merged     map[string]bool // table cells written with hMerge="1"
	Members    []Shape         // group members
	Picture    bool
	Lang       string // optional a:rPr lang on every run
}

// Slide describes one slide. A nil Notes means no notes slide; an empty,
// non-nil slice creates a notes slide with an empty body.
type Slide struct {
	Shapes []Shape
	Notes  []string
}

// Para is shorthand for a paragraph made of runs.
func Para(runs ...string) []string { return runs }

// TextShape builds a text shape from paragraphs.
func TextShape(name string, paragraphs ...[]string) Shape {
	return Shape{Name: name, Paragraphs: paragraphs}
}

// TableShape builds a table shape; each row lists its cell texts.
func TableShape(name string, rows ...[]string) Shape {
	return Shape{Name: name, Rows: rows}
}

// GroupShape nests members in a p:grpSp.
func GroupShape(name string, members ...Shape) Shape {
	return Shape{Name: name, Members: members}
}

// PictureShape builds an inert p:pic.
func PictureShape(name string) Shape {
	return Shape{Name: name, Picture: true}
}

// WriteDeck writes a minimal but well-formed .pptx to path.
func WriteDeck(t testing.TB, path string, slides ...Slide) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, BuildDeck(t, slides...), 0o644); err != nil {
		t.Fatalf("write deck %s: %v", path, err)
	}
}

const (
	nsP     = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsA     = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsRels  = "http://schemas.openxmlformats.org/package/2006/relationships"
	relBase = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"
	ctBase  = "application/vnd.openxmlformats-officedocument.presentationml."
	xmlDecl = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
)

// BuildDeck returns the bytes of a minimal .pptx built from slides. The deck
// has one master, one layout and one theme. A notes master is only present
// when at least one slide has notes.
func BuildDeck(t testing.TB, slides ...Slide) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name, content string) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s in zip: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	withNotes := false
	for _, s := range slides {
		if s.Notes != nil {
			withNotes = true
		}
	}

	var ct strings.Builder
	ct.WriteString(xmlDecl + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	ct.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	ct.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	ct.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="` + ctBase + `presentation.main+xml"/>`)
	ct.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="` + ctBase + `slideMaster+xml"/>`)
	ct.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="` + ctBase + `slideLayout+xml"/>`)
	ct.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	if withNotes {
		ct.WriteString(`<Override PartName="/ppt/notesMasters/notesMaster1.xml" ContentType="` + ctBase + `notesMaster+xml"/>`)
		ct.WriteString(`<Override PartName="/ppt/theme/theme2.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	}
	for i, s := range slides {
		fmt.Fprintf(&ct, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="%sslide+xml"/>`, i+1, ctBase)
		if s.Notes != nil {
			fmt.Fprintf(&ct, `<Override PartName="/ppt/notesSlides/notesSlide%d.xml" ContentType="%snotesSlide+xml"/>`, i+1, ctBase)
		}
	}
	ct.WriteString(`</Types>`)
	write("[Content_Types].xml", ct.String())

	write("_rels/.rels", rels(rel{"rId1", "officeDocument", "ppt/presentation.xml"}))

	presRels := []rel{{"rId1", "slideMaster", "slideMasters/slideMaster1.xml"}, {"rId2", "theme", "theme/theme1.xml"}}
	var ids strings.Builder
	for i := range slides {
		rid := fmt.Sprintf("rId%d", i+3)
		presRels = append(presRels, rel{rid, "slide", fmt.Sprintf("slides/slide%d.xml", i+1)})
		fmt.Fprintf(&ids, `<p:sldId id="%d" r:id="%s"/>`, 256+i, rid)
	}
	notesMasterList := ""
	if withNotes {
		rid := fmt.Sprintf("rId%d", len(slides)+3)
		presRels = append(presRels, rel{rid, "notesMaster", "notesMasters/notesMaster1.xml"})
		notesMasterList = `<p:notesMasterIdLst><p:notesMasterId r:id="` + rid + `"/></p:notesMasterIdLst>`
	}
	write("ppt/_rels/presentation.xml.rels", rels(presRels...))
	write("ppt/presentation.xml", xmlDecl+`<p:presentation xmlns:a="`+nsA+`" xmlns:r="`+nsR+`" xmlns:p="`+nsP+`">`+
		`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`+notesMasterList+
		`<p:sldIdLst>`+ids.String()+`</p:sldIdLst>`+
		`<p:sldSz cx="9144000" cy="6858000"/><p:notesSz cx="6858000" cy="9144000"/></p:presentation>`)

	write("ppt/slideMasters/slideMaster1.xml", xmlDecl+`<p:sldMaster xmlns:a="`+nsA+`" xmlns:r="`+nsR+`" xmlns:p="`+nsP+`">`+
		`<p:cSld><p:spTree>`+groupProps()+`</p:spTree></p:cSld>`+
		`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst></p:sldMaster>`)
	write("ppt/slideMasters/_rels/slideMaster1.xml.rels", rels(
		rel{"rId1", "slideLayout", "../slideLayouts/slideLayout1.xml"},
		rel{"rId2", "theme", "../theme/theme1.xml"},
	))
	write("ppt/slideLayouts/slideLayout1.xml", xmlDecl+`<p:sldLayout xmlns:a="`+nsA+`" xmlns:r="`+nsR+`" xmlns:p="`+nsP+`">`+
		`<p:cSld name="Blank"><p:spTree>`+groupProps()+`</p:spTree></p:cSld></p:sldLayout>`)
	write("ppt/slideLayouts/_rels/slideLayout1.xml.rels", rels(rel{"rId1", "slideMaster", "../slideMasters/slideMaster1.xml"}))
	write("ppt/theme/theme1.xml", themeXML("Office Theme"))

	if withNotes {
		write("ppt/theme/theme2.xml", themeXML("Notes Theme"))
		write("ppt/notesMasters/notesMaster1.xml", xmlDecl+`<p:notesMaster xmlns:a="`+nsA+`" xmlns:r="`+nsR+`" xmlns:p="`+nsP+`">`+
			`<p:cSld><p:spTree>`+groupProps()+`</p:spTree></p:cSld>`+
			`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>`+
			`</p:notesMaster>`)
		write("ppt/notesMasters/_rels/notesMaster1.xml.rels", rels(rel{"rId1", "theme", "../theme/theme2.xml"}))
	}

	for i, s := range slides {
		n := i + 1
		id := 2
		var tree strings.Builder
		for _, sh := range s.Shapes {
			writeShape(&tree, sh, &id)
		}
		write(fmt.Sprintf("ppt/slides/slide%d.xml", n), xmlDecl+`<p:sld xmlns:a="`+nsA+`" xmlns:r="`+nsR+`" xmlns:p="`+nsP+`">`+
			`<p:cSld><p:spTree>`+groupProps()+tree.String()+`</p:spTree></p:cSld>`+
			`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)

		slideRels := []rel{{"rId1", "slideLayout", "../slideLayouts/slideLayout1.xml"}}
		if s.Notes != nil {
			slideRels = append(slideRels, rel{"rId2", "notesSlide", fmt.Sprintf("../notesSlides/notesSlide%d.xml", n)})
			var body strings.Builder
			writeParagraphs(&body, notesParagraphs(s.Notes), "")
			write(fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", n), xmlDecl+`<p:notes xmlns:a="`+nsA+`" xmlns:r="`+nsR+`" xmlns:p="`+nsP+`">`+
				`<p:cSld><p:spTree>`+groupProps()+
				`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Slide Image Placeholder 1"/><p:cNvSpPr/><p:nvPr><p:ph type="sldImg"/></p:nvPr></p:nvSpPr><p:spPr/></p:sp>`+
				`<p:sp><p:nvSpPr><p:cNvPr id="3" name="Notes Placeholder 2"/><p:cNvSpPr/><p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr><p:spPr/>`+
				`<p:txBody><a:bodyPr/><a:lstStyle/>`+body.String()+`</p:txBody></p:sp>`+
				`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:notes>`)
			write(fmt.Sprintf("ppt/notesSlides/_rels/notesSlide%d.xml.rels", n), rels(
				rel{"rId1", "notesMaster", "../notesMasters/notesMaster1.xml"},
				rel{"rId2", "slide", fmt.Sprintf("../slides/slide%d.xml", n)},
			))
		}
		write(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), rels(slideRels...))
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

type rel struct {
	id, typ, target string
}

func rels(entries ...rel) string {
	var sb strings.Builder
	sb.WriteString(xmlDecl + `<Relationships xmlns="` + nsRels + `">`)
	for _, r := range entries {
		fmt.Fprintf(&sb, `<Relationship Id="%s" Type="%s%s" Target="%s"/>`, r.id, relBase, r.typ, r.target)
	}
	sb.WriteString(`</Relationships>`)
	return sb.String()
}

func groupProps() string {
	return `<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`
}

func notesParagraphs(lines []string) [][]string {
	var out [][]string
	for _, line := range lines {
		if line == "" {
			out = append(out, nil)
			continue
		}
		out = append(out, []string{line})
	}
	if len(out) == 0 {
		out = append(out, nil)
	}
	return out
}

func writeShape(sb *strings.Builder, sh Shape, id *int) {
	cnv := func() string {
		s := fmt.Sprintf(`<p:cNvPr id="%d" name="%s"/>`, *id, escape(sh.Name))
		*id++
		return s
	}
	switch {
	case sh.Picture:
		sb.WriteString(`<p:pic><p:nvPicPr>` + cnv() + `<p:cNvPicPr/><p:nvPr/></p:nvPicPr>` +
			`<p:blipFill><a:blip r:embed="rId99"/></p:blipFill><p:spPr/></p:pic>`)
	case sh.Members != nil:
		sb.WriteString(`<p:grpSp><p:nvGrpSpPr>` + cnv() + `<p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`)
		for _, m := range sh.Members {
			writeShape(sb, m, id)
		}
		sb.WriteString(`</p:grpSp>`)
	case sh.Rows != nil:
		sb.WriteString(`<p:graphicFrame><p:nvGraphicFramePr>` + cnv() + `<p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr>` +
			`<p:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/></p:xfrm>` +
			`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table"><a:tbl><a:tblGrid/>`)
		for _, row := range sh.Rows {
			sb.WriteString(`<a:tr h="370840">`)
			for _, cell := range row {
				if sh.Merged[cell] {
					sb.WriteString(`<a:tc hMerge="1"><a:txBody><a:bodyPr/><a:lstStyle/>`)
				} else {
					sb.WriteString(`<a:tc><a:txBody><a:bodyPr/><a:lstStyle/>`)
				}
				writeParagraphs(sb, [][]string{{cell}}, sh.Lang)
				sb.WriteString(`</a:txBody><a:tcPr/></a:tc>`)
			}
			sb.WriteString(`</a:tr>`)
		}
		sb.WriteString(`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`)
	case sh.Paragraphs != nil:
		sb.WriteString(`<p:sp><p:nvSpPr>` + cnv() + `<p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr/><p:txBody><a:bodyPr/><a:lstStyle/>`)
		writeParagraphs(sb, sh.Paragraphs, sh.Lang)
		sb.WriteString(`</p:txBody></p:sp>`)
	default:
		sb.WriteString(`<p:sp><p:nvSpPr>` + cnv() + `<p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr/></p:sp>`)
	}
}

func writeParagraphs(sb *strings.Builder, paragraphs [][]string, lang string) {
	for _, runs := range paragraphs {
		sb.WriteString(`<a:p>`)
		for _, r := range runs {
			if lang != "" {
				sb.WriteString(`<a:r><a:rPr lang="` + lang + `" b="1"/><a:t>` + escape(r) + `</a:t></a:r>`)
			} else {
				sb.WriteString(`<a:r><a:t>` + escape(r) + `</a:t></a:r>`)
			}
		}
		sb.WriteString(`</a:p>`)
	}
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func themeXML(name string) string {
	return xmlDecl + `<a:theme xmlns:a="` + nsA + `" name="` + name + `"><a:themeElements>` +
		`<a:clrScheme name="Office"><a:dk1><a:sysClr val="windowText" lastClr="000000"/></a:dk1><a:lt1><a:sysClr val="window" lastClr="FFFFFF"/></a:lt1></a:clrScheme>` +
		`<a:fontScheme name="Office"><a:majorFont><a:latin typeface="Calibri Light"/></a:majorFont><a:minorFont><a:latin typeface="Calibri"/></a:minorFont></a:fontScheme>` +
		`</a:themeElements></a:theme>`
}
