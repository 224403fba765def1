package pptx

import (
	"path"
	"strconv"
	"strings"
)

// relationship is one entry of a .rels part.
type relationship struct {
	ID     string
	Type   string
	Target string
}

type relationships struct {
	owner string
	part  *part
}

func relsPartName(owner string) string {
	return path.Join(path.Dir(owner), "_rels", path.Base(owner)+".rels")
}

const emptyRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="` + nsPackageRels + `"></Relationships>`

// relationships loads the rels part for owner. A missing rels part yields
// an empty, not yet persisted, set.
func (p *Presentation) relationships(owner string) (*relationships, error) {
	name := relsPartName(owner)
	if !p.exists(name) {
		doc, err := parseDocument([]byte(emptyRels))
		if err != nil {
			return nil, err
		}
		return &relationships{owner: owner, part: &part{name: name, doc: doc}}, nil
	}
	pt, err := p.part(name)
	if err != nil {
		return nil, err
	}
	return &relationships{owner: owner, part: pt}, nil
}

func (r *relationships) all() []relationship {
	var out []relationship
	for _, el := range r.part.doc.root.childrenNamed(nsPackageRels, "Relationship") {
		rel := relationship{}
		rel.ID, _ = el.attr("", "Id")
		rel.Type, _ = el.attr("", "Type")
		rel.Target, _ = el.attr("", "Target")
		out = append(out, rel)
	}
	return out
}

func (r *relationships) byID(id string) (relationship, bool) {
	for _, rel := range r.all() {
		if rel.ID == id {
			return rel, true
		}
	}
	return relationship{}, false
}

func (r *relationships) firstOfType(relType string) (relationship, bool) {
	for _, rel := range r.all() {
		if rel.Type == relType {
			return rel, true
		}
	}
	return relationship{}, false
}

// add appends a relationship to targetPart and returns its new id.
func (r *relationships) add(p *Presentation, relType, targetPart string) (string, error) {
	if !p.exists(r.part.name) {
		if _, err := p.addPart(r.part.name, "", r.part.doc, nil); err != nil {
			return "", err
		}
		p.parts[r.part.name] = r.part
	}

	max := 0
	for _, rel := range r.all() {
		if n, err := strconv.Atoi(strings.TrimPrefix(rel.ID, "rId")); err == nil && n > max {
			max = n
		}
	}
	id := "rId" + strconv.Itoa(max+1)

	root := r.part.doc.root
	el := newElement(root, nsPackageRels, "Relationship", "")
	el.setAttr("Id", id)
	el.setAttr("Type", relType)
	el.setAttr("Target", relativeTarget(r.owner, targetPart))
	root.appendChild(el)
	r.part.markDirty()
	return id, nil
}
