// document.go implements the context document: an ordered JSON object kept
// as raw bytes and edited in place with gjson/sjson.

package csentry

import (
	"bytes"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Mergeable document sections.
const (
	sectionUser  = "user"
	sectionTags  = "tags"
	sectionExtra = "extra"
)

var mergeableSections = [...]string{sectionUser, sectionTags, sectionExtra}

func isMergeableSection(name string) bool {
	for _, s := range mergeableSections {
		if s == name {
			return true
		}
	}
	return false
}

// document is not safe for concurrent use; Client guards it with its mutex.
// Every path passed to it is a fixed top-level name, so no sjson escaping is
// needed.
type document struct {
	raw []byte
}

func newDocument() *document {
	return &document{raw: []byte("{}")}
}

func (d *document) get(path string) gjson.Result {
	return gjson.GetBytes(d.raw, path)
}

func (d *document) has(path string) bool {
	return d.get(path).Exists()
}

func (d *document) setString(path, value string) {
	// Setting a string on a valid object cannot fail.
	if raw, err := sjson.SetBytes(d.raw, path, value); err == nil {
		d.raw = raw
	}
}

func (d *document) setRaw(path string, value []byte) error {
	raw, err := sjson.SetRawBytes(d.raw, path, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	d.raw = raw
	return nil
}

// delete removes path and reports whether it existed.
func (d *document) delete(path string) bool {
	if !d.has(path) {
		return false
	}
	raw, err := sjson.DeleteBytes(d.raw, path)
	if err != nil {
		return false
	}
	d.raw = raw
	return true
}

// mergeSection merges a JSON object into the named section. A null value
// deletes the section. Keys already in the section keep their position and
// have their whole value replaced; new keys are appended in input order.
// It reports whether the document changed.
func (d *document) mergeSection(name string, data gjson.Result) (bool, error) {
	if !data.Exists() || data.Type == gjson.Null {
		return d.delete(name), nil
	}
	if !data.IsObject() {
		return false, fmt.Errorf("%w: section %q is %s", ErrInvalidContext, name, data.Type)
	}

	cur := d.get(name)
	created := !cur.IsObject()
	if created {
		cur = gjson.Parse("{}")
	}

	type entry struct{ key, value string }
	var updates []entry
	index := make(map[string]int)
	data.ForEach(func(k, v gjson.Result) bool {
		if i, ok := index[k.String()]; ok {
			updates[i].value = v.Raw
			return true
		}
		index[k.String()] = len(updates)
		updates = append(updates, entry{key: k.Raw, value: v.Raw})
		return true
	})
	if len(updates) == 0 && !created {
		return false, nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(key, value string) {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		buf.WriteString(key)
		buf.WriteByte(':')
		buf.WriteString(value)
	}
	done := make(map[string]bool, len(updates))
	cur.ForEach(func(k, v gjson.Result) bool {
		if i, ok := index[k.String()]; ok {
			write(k.Raw, updates[i].value)
			done[k.String()] = true
		} else {
			write(k.Raw, v.Raw)
		}
		return true
	})
	data.ForEach(func(k, _ gjson.Result) bool {
		key := k.String()
		if !done[key] {
			write(updates[index[key]].key, updates[index[key]].value)
			done[key] = true
		}
		return true
	})
	buf.WriteByte('}')

	return true, d.setRaw(name, compact(buf.String()))
}

// mergeGeneric dispatches the user, tags and extra keys of an object to
// mergeSection and ignores the rest. Null clears all three sections.
func (d *document) mergeGeneric(ctx gjson.Result) error {
	if !ctx.Exists() || ctx.Type == gjson.Null {
		for _, name := range mergeableSections {
			d.delete(name)
		}
		return nil
	}
	if !ctx.IsObject() {
		return fmt.Errorf("%w: got %s", ErrInvalidContext, ctx.Type)
	}

	var err error
	ctx.ForEach(func(k, v gjson.Result) bool {
		name := k.String()
		if !isMergeableSection(name) {
			return true
		}
		if v.Type != gjson.Null && !v.IsObject() {
			// Scalars and arrays cannot be merged key by key.
			return true
		}
		_, err = d.mergeSection(name, v)
		return err == nil
	})
	return err
}

// appendBreadcrumb appends an encoded breadcrumb to breadcrumbs.values,
// creating the section on first use.
func (d *document) appendBreadcrumb(crumb []byte) error {
	if d.get("breadcrumbs.values").IsArray() {
		return d.setRaw("breadcrumbs.values.-1", crumb)
	}
	var buf bytes.Buffer
	buf.WriteString(`{"values":[`)
	buf.Write(crumb)
	buf.WriteString(`]}`)
	return d.setRaw("breadcrumbs", buf.Bytes())
}

// wire returns a compact copy suitable for the wire.
func (d *document) wire() []byte {
	return compact(string(d.raw))
}

// indented returns an indented copy for inspection.
func (d *document) indented() []byte {
	return pretty.Pretty(d.raw)
}

func compact(raw string) []byte {
	return pretty.Ugly([]byte(raw))
}
