package pptx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	contentTypesPart     = "[Content_Types].xml"
	presentationPart     = "ppt/presentation.xml"
	relTypeSlide         = nsOfficeRels + "/slide"
	relTypeNotesSlide    = nsOfficeRels + "/notesSlide"
	relTypeNotesMaster   = nsOfficeRels + "/notesMaster"
	relTypeTheme         = nsOfficeRels + "/theme"
	contentTypeNotes     = "application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"
	contentTypeNotesMstr = "application/vnd.openxmlformats-officedocument.presentationml.notesMaster+xml"
	contentTypeTheme     = "application/vnd.openxmlformats-officedocument.theme+xml"
)

// ErrInvalidDocument marks archives that are not usable presentations.
var ErrInvalidDocument = errors.New("invalid presentation")

// Presentation is an opened deck. Mutations happen in memory until Save.
type Presentation struct {
	closer io.Closer
	files  []*zip.File
	byName map[string]*zip.File
	parts  map[string]*part
	added  []string
	slides []*Slide
}

// part is a parsed XML part; dirty parts are re-serialised on Save.
type part struct {
	name  string
	doc   *document
	dirty bool
	raw   []byte // content for new binary-copied parts (themes)
}

func (p *part) markDirty() { p.dirty = true }

// Stats summarises a presentation's structure.
type Stats struct {
	Slides      int
	Shapes      int
	NotesSlides int
}

// Open reads the presentation at path. Call Close when done.
func Open(filename string) (*Presentation, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	p, err := Read(f, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	p.closer = f
	return p, nil
}

// Read parses a presentation from r. The reader must stay valid until Save
// has been called.
func Read(r io.ReaderAt, size int64) (*Presentation, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: opening ZIP archive: %v", ErrInvalidDocument, err)
	}

	p := &Presentation{
		files:  zr.File,
		byName: make(map[string]*zip.File, len(zr.File)),
		parts:  make(map[string]*part),
	}
	for _, f := range zr.File {
		p.byName[f.Name] = f
	}

	for _, name := range []string{contentTypesPart, presentationPart} {
		if _, ok := p.byName[name]; !ok {
			return nil, fmt.Errorf("%w: missing required file: %s", ErrInvalidDocument, name)
		}
	}
	if err := p.loadSlides(); err != nil {
		return nil, err
	}
	return p, nil
}

// Close releases the underlying file, if any.
func (p *Presentation) Close() error {
	if p.closer == nil {
		return nil
	}
	err := p.closer.Close()
	p.closer = nil
	return err
}

// Slides returns the slides in presentation order.
func (p *Presentation) Slides() []*Slide {
	return p.slides
}

// Stats counts slides, shapes (including group members) and notes slides.
func (p *Presentation) Stats() Stats {
	var st Stats
	st.Slides = len(p.slides)
	for _, s := range p.slides {
		st.Shapes += countShapes(s.Shapes())
		if s.HasNotes() {
			st.NotesSlides++
		}
	}
	return st
}

func countShapes(shapes []Shape) int {
	n := len(shapes)
	for _, sh := range shapes {
		if g, ok := sh.(*GroupShape); ok {
			n += countShapes(g.Shapes())
		}
	}
	return n
}

func (p *Presentation) loadSlides() error {
	pres, err := p.part(presentationPart)
	if err != nil {
		return fmt.Errorf("%w: parsing presentation: %v", ErrInvalidDocument, err)
	}
	rels, err := p.relationships(presentationPart)
	if err != nil {
		return fmt.Errorf("%w: parsing relationships: %v", ErrInvalidDocument, err)
	}

	list := pres.doc.root.child(nsPresentation, "sldIdLst")
	for _, id := range list.childrenNamed(nsPresentation, "sldId") {
		rid, ok := id.attr(nsOfficeRels, "id")
		if !ok {
			continue
		}
		rel, ok := rels.byID(rid)
		if !ok || rel.Type != relTypeSlide {
			return fmt.Errorf("%w: slide relationship %s not found", ErrInvalidDocument, rid)
		}
		name := resolveTarget(presentationPart, rel.Target)
		sp, err := p.part(name)
		if err != nil {
			return fmt.Errorf("%w: parsing %s: %v", ErrInvalidDocument, name, err)
		}
		p.slides = append(p.slides, &Slide{pres: p, index: len(p.slides), part: sp})
	}
	return nil
}

// part returns the parsed XML part, loading it on first use.
func (p *Presentation) part(name string) (*part, error) {
	if pt, ok := p.parts[name]; ok {
		return pt, nil
	}
	f, ok := p.byName[name]
	if !ok {
		return nil, fmt.Errorf("part not found: %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	doc, err := parseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	pt := &part{name: name, doc: doc}
	p.parts[name] = pt
	return pt, nil
}

func (p *Presentation) exists(name string) bool {
	if _, ok := p.byName[name]; ok {
		return true
	}
	_, ok := p.parts[name]
	return ok
}

// addPart registers a new part and, when contentType is set, its
// content-type override.
func (p *Presentation) addPart(name, contentType string, doc *document, raw []byte) (*part, error) {
	if p.exists(name) {
		return nil, fmt.Errorf("part already exists: %s", name)
	}
	pt := &part{name: name, doc: doc, raw: raw, dirty: true}
	p.parts[name] = pt
	p.added = append(p.added, name)
	if contentType == "" {
		return pt, nil
	}

	ct, err := p.part(contentTypesPart)
	if err != nil {
		return nil, err
	}
	root := ct.doc.root
	override := newElement(root, nsContentTypes, "Override", "")
	override.setAttr("PartName", "/"+name)
	override.setAttr("ContentType", contentType)
	root.appendChild(override)
	ct.markDirty()
	return pt, nil
}

// nextPartName finds the first unused "<prefix><n>.xml".
func (p *Presentation) nextPartName(prefix string) string {
	for n := 1; ; n++ {
		name := prefix + strconv.Itoa(n) + ".xml"
		if !p.exists(name) {
			return name
		}
	}
}

// Save writes the presentation to w. Untouched entries are copied raw.
func (p *Presentation) Save(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, f := range p.files {
		pt, ok := p.parts[f.Name]
		if !ok || !pt.dirty {
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}
		hdr := &zip.FileHeader{Name: f.Name, Method: zip.Deflate, Modified: f.Modified}
		if err := writeEntry(zw, hdr, pt); err != nil {
			return err
		}
	}
	for _, name := range p.added {
		hdr := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: time.Now()}
		if err := writeEntry(zw, hdr, p.parts[name]); err != nil {
			return err
		}
	}
	return zw.Close()
}

func writeEntry(zw *zip.Writer, hdr *zip.FileHeader, pt *part) error {
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("create %s: %w", hdr.Name, err)
	}
	data := pt.raw
	if pt.doc != nil {
		data = pt.doc.bytes()
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", hdr.Name, err)
	}
	return nil
}

// readRaw returns the bytes of an archive entry.
func (p *Presentation) readRaw(name string) ([]byte, error) {
	f, ok := p.byName[name]
	if !ok {
		return nil, fmt.Errorf("part not found: %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// partsWithPrefix lists archive entries under prefix ending in .xml, sorted.
func (p *Presentation) partsWithPrefix(prefix string) []string {
	var out []string
	for name := range p.byName {
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".xml") && !strings.Contains(name, "/_rels/") {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// resolveTarget turns a relationship target into an archive entry name.
func resolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Clean(path.Join(path.Dir(source), target))
}

// relativeTarget is the inverse of resolveTarget for parts in sibling folders.
func relativeTarget(source, target string) string {
	from := strings.Split(path.Dir(source), "/")
	to := strings.Split(target, "/")
	i := 0
	for i < len(from) && i < len(to)-1 && from[i] == to[i] {
		i++
	}
	var parts []string
	for range from[i:] {
		parts = append(parts, "..")
	}
	parts = append(parts, to[i:]...)
	return strings.Join(parts, "/")
}
