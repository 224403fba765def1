package pptx

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"pptx-translator/internal/testsupport"
)

func readDeck(t *testing.T, data []byte) *Presentation {
	t.Helper()
	p, err := Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return p
}

func saveDeck(t *testing.T, p *Presentation) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := p.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return buf.Bytes()
}

func zipEntries(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		out[f.Name] = b
	}
	return out
}

func TestOpenWalksShapesInDocumentOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.pptx")
	testsupport.WriteDeck(t, path,
		testsupport.Slide{Shapes: []testsupport.Shape{
			testsupport.TextShape("Title 1", testsupport.Para("Hello", " ", "world"), testsupport.Para("Second")),
			testsupport.PictureShape("Picture 2"),
			testsupport.TableShape("Table 3", []string{"A1", "B1"}, []string{"A2", "B2"}),
			testsupport.GroupShape("Group 4", testsupport.TextShape("Inner 5", testsupport.Para("Nested"))),
			{Name: "Empty 6"},
		}},
		testsupport.Slide{Notes: []string{"Speaker note"}},
	)

	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	slides := p.Slides()
	if len(slides) != 2 {
		t.Fatalf("expected 2 slides, got %d", len(slides))
	}
	shapes := slides[0].Shapes()
	if len(shapes) != 5 {
		t.Fatalf("expected 5 shapes, got %d", len(shapes))
	}

	text, ok := shapes[0].(*TextShape)
	if !ok || text.Name() != "Title 1" {
		t.Fatalf("unexpected first shape %T %q", shapes[0], shapes[0].Name())
	}
	paras := text.TextFrame().Paragraphs()
	if len(paras) != 2 || len(paras[0].Runs()) != 3 {
		t.Fatalf("unexpected paragraph layout: %d paragraphs", len(paras))
	}
	if got := text.TextFrame().Text(); got != "Hello world\nSecond" {
		t.Fatalf("unexpected frame text %q", got)
	}
	if _, ok := shapes[1].(*OtherShape); !ok {
		t.Fatalf("expected picture to be OtherShape, got %T", shapes[1])
	}
	table, ok := shapes[2].(*TableShape)
	if !ok {
		t.Fatalf("expected TableShape, got %T", shapes[2])
	}
	rows := table.Table().Rows()
	if len(rows) != 2 || len(rows[1].Cells()) != 2 || rows[1].Cells()[0].TextFrame().Text() != "A2" {
		t.Fatal("unexpected table contents")
	}
	group, ok := shapes[3].(*GroupShape)
	if !ok || len(group.Shapes()) != 1 {
		t.Fatalf("expected group with one member, got %T", shapes[3])
	}
	if _, ok := shapes[4].(*OtherShape); !ok {
		t.Fatalf("expected shape without text body to be OtherShape, got %T", shapes[4])
	}

	if _, ok := slides[0].Notes(); ok {
		t.Fatal("slide 1 should have no notes")
	}
	notes, ok := slides[1].Notes()
	if !ok || notes.Text() != "Speaker note" {
		t.Fatalf("unexpected notes on slide 2: ok=%v", ok)
	}

	st := p.Stats()
	if st.Slides != 2 || st.Shapes != 6 || st.NotesSlides != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestRunMutationPreservesFormatting(t *testing.T) {
	data := testsupport.BuildDeck(t, testsupport.Slide{Shapes: []testsupport.Shape{
		{Name: "Body", Paragraphs: [][]string{{"Hello & goodbye"}}, Lang: "en-US"},
		testsupport.TextShape("Plain", testsupport.Para("No props")),
	}})
	p := readDeck(t, data)

	shapes := p.Slides()[0].Shapes()
	styled := shapes[0].(*TextShape).TextFrame().Paragraphs()[0].Runs()[0]
	if styled.Language() != "en-US" {
		t.Fatalf("unexpected source language %q", styled.Language())
	}
	styled.SetText("Hola y adiós")
	styled.SetLanguage("es-ES")

	plain := shapes[1].(*TextShape).TextFrame().Paragraphs()[0].Runs()[0]
	plain.SetText("Sin propiedades")
	plain.SetLanguage("es-ES")

	out := zipEntries(t, saveDeck(t, p))
	slide := string(out["ppt/slides/slide1.xml"])
	for _, want := range []string{
		`<a:r><a:rPr lang="es-ES" b="1"/><a:t>Hola y adiós</a:t></a:r>`,
		`<a:r><a:rPr lang="es-ES"/><a:t>Sin propiedades</a:t></a:r>`,
	} {
		if !strings.Contains(slide, want) {
			t.Fatalf("expected %s in slide xml:\n%s", want, slide)
		}
	}

	reread := readDeck(t, saveDeck(t, readDeck(t, saveDeck(t, p))))
	if got := reread.Slides()[0].Shapes()[0].(*TextShape).TextFrame().Text(); got != "Hola y adiós" {
		t.Fatalf("unexpected text after reload %q", got)
	}
}

func TestSetTextDropsCharactersXMLCannotCarry(t *testing.T) {
	data := testsupport.BuildDeck(t, testsupport.Slide{
		Shapes: []testsupport.Shape{testsupport.TextShape("Body", testsupport.Para("Hello"))},
		Notes:  []string{"old"},
	})
	p := readDeck(t, data)
	run := p.Slides()[0].Shapes()[0].(*TextShape).TextFrame().Paragraphs()[0].Runs()[0]
	run.SetText("Hola\x0bmundo\x00 \U0001F600")
	if got := run.Text(); got != "Holamundo \U0001F600" {
		t.Fatalf("unexpected run text %q", got)
	}
	notes, _ := p.Slides()[0].Notes()
	notes.SetText("nota\x1b\tfinal\uFFFE")

	reread := readDeck(t, saveDeck(t, p))
	if got := reread.Slides()[0].Shapes()[0].(*TextShape).TextFrame().Text(); got != "Holamundo \U0001F600" {
		t.Fatalf("unexpected text after reload %q", got)
	}
	notes, _ = reread.Slides()[0].Notes()
	if got := notes.Text(); got != "nota\tfinal" {
		t.Fatalf("unexpected notes after reload %q", got)
	}
}

func TestSaveCopiesUntouchedEntries(t *testing.T) {
	data := testsupport.BuildDeck(t,
		testsupport.Slide{Shapes: []testsupport.Shape{testsupport.TextShape("A", testsupport.Para("one"))}},
		testsupport.Slide{Shapes: []testsupport.Shape{testsupport.TextShape("B", testsupport.Para("two"))}},
	)
	before := zipEntries(t, data)

	p := readDeck(t, data)
	p.Slides()[1].Shapes()[0].(*TextShape).TextFrame().Paragraphs()[0].Runs()[0].SetText("dos")
	after := zipEntries(t, saveDeck(t, p))

	if len(after) != len(before) {
		t.Fatalf("entry count changed: %d -> %d", len(before), len(after))
	}
	for name, b := range before {
		if name == "ppt/slides/slide2.xml" {
			if bytes.Equal(b, after[name]) {
				t.Fatal("expected modified slide to change")
			}
			continue
		}
		if !bytes.Equal(b, after[name]) {
			t.Fatalf("entry %s changed without modification", name)
		}
	}
}

func TestSetTextReplacesParagraphs(t *testing.T) {
	data := testsupport.BuildDeck(t, testsupport.Slide{Notes: []string{"first", "second", "third"}})
	p := readDeck(t, data)

	notes, ok := p.Slides()[0].Notes()
	if !ok {
		t.Fatal("expected notes")
	}
	if notes.Text() != "first\nsecond\nthird" {
		t.Fatalf("unexpected notes text %q", notes.Text())
	}
	notes.SetText("uno\ndos")
	notes.SetLanguage("es-ES")

	reread := readDeck(t, saveDeck(t, p))
	notes, _ = reread.Slides()[0].Notes()
	if notes.Text() != "uno\ndos" {
		t.Fatalf("unexpected rewritten notes %q", notes.Text())
	}
	for _, para := range notes.Paragraphs() {
		for _, r := range para.Runs() {
			if r.Language() != "es-ES" {
				t.Fatalf("expected es-ES on notes run, got %q", r.Language())
			}
		}
	}
}

func TestEnsureNotesCreatesNotesSlideAndMaster(t *testing.T) {
	data := testsupport.BuildDeck(t,
		testsupport.Slide{Shapes: []testsupport.Shape{testsupport.TextShape("T", testsupport.Para("Hello"))}},
		testsupport.Slide{},
	)
	p := readDeck(t, data)
	before := p.Stats()

	frame, err := p.Slides()[0].EnsureNotes()
	if err != nil {
		t.Fatalf("EnsureNotes: %v", err)
	}
	frame.SetText("Generated note")
	if again, err := p.Slides()[0].EnsureNotes(); err != nil || again.Text() != "Generated note" {
		t.Fatalf("second EnsureNotes should reuse the notes slide: %v", err)
	}
	if _, err := p.Slides()[1].EnsureNotes(); err != nil {
		t.Fatalf("EnsureNotes slide 2: %v", err)
	}

	out := saveDeck(t, p)
	entries := zipEntries(t, out)
	for _, name := range []string{
		"ppt/notesSlides/notesSlide1.xml",
		"ppt/notesSlides/notesSlide2.xml",
		"ppt/notesSlides/_rels/notesSlide1.xml.rels",
		"ppt/notesMasters/notesMaster1.xml",
		"ppt/notesMasters/_rels/notesMaster1.xml.rels",
		"ppt/theme/theme2.xml",
	} {
		if _, ok := entries[name]; !ok {
			t.Fatalf("missing %s", name)
		}
	}
	ct := string(entries["[Content_Types].xml"])
	for _, want := range []string{
		`PartName="/ppt/notesSlides/notesSlide1.xml" ContentType="` + contentTypeNotes + `"`,
		`PartName="/ppt/notesMasters/notesMaster1.xml" ContentType="` + contentTypeNotesMstr + `"`,
		`PartName="/ppt/theme/theme2.xml" ContentType="` + contentTypeTheme + `"`,
	} {
		if !strings.Contains(ct, want) {
			t.Fatalf("content types missing %s:\n%s", want, ct)
		}
	}
	pres := string(entries["ppt/presentation.xml"])
	if !strings.Contains(pres, `</p:sldMasterIdLst><p:notesMasterIdLst><p:notesMasterId r:id="rId5"/></p:notesMasterIdLst><p:sldIdLst>`) {
		t.Fatalf("notes master not registered after slide masters:\n%s", pres)
	}
	if !strings.Contains(string(entries["ppt/slides/_rels/slide1.xml.rels"]), `Target="../notesSlides/notesSlide1.xml"`) {
		t.Fatal("slide relationship to notes slide missing")
	}

	reread := readDeck(t, out)
	after := reread.Stats()
	if after.Slides != before.Slides || after.Shapes != before.Shapes {
		t.Fatalf("structure changed: %+v -> %+v", before, after)
	}
	if after.NotesSlides != 2 {
		t.Fatalf("expected 2 notes slides, got %d", after.NotesSlides)
	}
	notes, ok := reread.Slides()[0].Notes()
	if !ok || notes.Text() != "Generated note" {
		t.Fatal("generated note did not survive reload")
	}
}

func TestReadRejectsInvalidArchives(t *testing.T) {
	if _, err := Read(bytes.NewReader([]byte("not a zip")), 9); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument for garbage, got %v", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("[Content_Types].xml")
	_, _ = w.Write([]byte(`<Types/>`))
	_ = zw.Close()
	if _, err := Read(bytes.NewReader(buf.Bytes()), int64(buf.Len())); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument for missing presentation.xml, got %v", err)
	}
}
