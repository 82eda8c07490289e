package detect

import (
	"github.com/mj1618/docbind/internal/model"
	"github.com/mj1618/docbind/internal/platform"
	"github.com/mj1618/docbind/internal/probe"
)

// Control is a content control read from the document with its tag parsed.
type Control struct {
	Handle     platform.ContentControl
	Tag        string
	Alias      string
	InternalID string
	Info       model.TagInfo
	Recognized bool
}

func readControl(cc platform.ContentControl) Control {
	c := Control{Handle: cc}
	if r := probe.Call(cc.Tag); r.OK() {
		c.Tag = r.Value
	}
	if r := probe.Call(cc.Alias); r.OK() {
		c.Alias = r.Value
	}
	if idp, ok := cc.(platform.ControlIdentifier); ok {
		if r := probe.Call(idp.InternalID); r.OK() {
			c.InternalID = r.Value
		}
	}
	c.Info, c.Recognized = model.ParseTag(c.Tag)
	return c
}

// ActiveControl returns the content control holding the cursor.
func ActiveControl(doc platform.Document) (Control, bool) {
	reader, ok := doc.(platform.ActiveControlReader)
	if !ok {
		return Control{}, false
	}
	r := probe.Call(reader.CurrentContentControl)
	if !r.OK() || r.Value == nil {
		return Control{}, false
	}
	return readControl(r.Value), true
}

// SelectedControls returns every content control reporting itself selected.
func SelectedControls(doc platform.Document) []Control {
	lister, ok := doc.(platform.ContentControlLister)
	if !ok {
		return nil
	}
	all := probe.Call(lister.AllContentControls)
	if !all.OK() {
		return nil
	}
	var out []Control
	for _, cc := range all.Value {
		sel, ok := cc.(platform.Selectable)
		if !ok {
			continue
		}
		if r := probe.Call(sel.Selected); r.OK() && r.Value {
			out = append(out, readControl(cc))
		}
	}
	return out
}

// AllControls returns every content control in the document.
func AllControls(doc platform.Document) []Control {
	lister, ok := doc.(platform.ContentControlLister)
	if !ok {
		return nil
	}
	all := probe.Call(lister.AllContentControls)
	if !all.OK() {
		return nil
	}
	out := make([]Control, 0, len(all.Value))
	for _, cc := range all.Value {
		if cc != nil {
			out = append(out, readControl(cc))
		}
	}
	return out
}

func controlDetail(c Control) model.ControlDetail {
	d := model.ControlDetail{
		Tag:         c.Tag,
		Alias:       c.Alias,
		InternalID:  c.InternalID,
		BindingType: c.Info.BindingType,
	}
	if !c.Info.Malformed {
		d.BindingData = c.Info.Payload
	}
	return d
}

func linkDetail(c Control) model.LinkDetail {
	d := model.LinkDetail{Tag: c.Tag, Alias: c.Alias}
	if !c.Info.Malformed {
		d.LinkData = c.Info.Payload
	}
	return d
}
