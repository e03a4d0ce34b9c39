package io

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/lanegraph/pkg/layout"
)

type layoutFile struct {
	Rows       []rowJSON `json:"rows"`
	Unresolved []string  `json:"unresolved,omitempty"`
	Truncated  bool      `json:"truncated,omitempty"`
}

type rowJSON struct {
	Active      activeJSON   `json:"active"`
	ActiveIndex int          `json:"active_index"`
	CurTids     []int        `json:"cur_tids"`
	Input       []threadJSON `json:"input"`
	Output      []threadJSON `json:"output"`
}

type activeJSON struct {
	Tid  int  `json:"tid"`
	Node node `json:"node"`
}

type threadJSON struct {
	Tid         int  `json:"tid"`
	DepOnActive bool `json:"dep_on_active"`
}

func threadsToJSON(ths []layout.Thread) []threadJSON {
	out := make([]threadJSON, len(ths))
	for i, th := range ths {
		out[i] = threadJSON{Tid: th.Tid, DepOnActive: th.DepOnActive}
	}
	return out
}

func threadsFromJSON(ths []threadJSON) []layout.Thread {
	out := make([]layout.Thread, len(ths))
	for i, th := range ths {
		out[i] = layout.Thread{Tid: th.Tid, DepOnActive: th.DepOnActive}
	}
	return out
}

// MarshalLayout encodes a view as compact JSON.
func MarshalLayout(v *layout.View) ([]byte, error) {
	return json.Marshal(toLayoutFile(v))
}

// UnmarshalLayout decodes a view produced by [MarshalLayout] or [WriteLayout].
func UnmarshalLayout(data []byte) (*layout.View, error) {
	var f layoutFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	return f.view(), nil
}

// WriteLayout writes a view as indented JSON.
func WriteLayout(v *layout.View, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toLayoutFile(v)); err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	return nil
}

// ReadLayout decodes a view written by [WriteLayout]. ReadLayout does not
// close r.
func ReadLayout(r io.Reader) (*layout.View, error) {
	var f layoutFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	return f.view(), nil
}

func toLayoutFile(v *layout.View) layoutFile {
	f := layoutFile{
		Rows:       make([]rowJSON, len(v.Rows)),
		Unresolved: v.Unresolved,
		Truncated:  v.Truncated,
	}
	for i, r := range v.Rows {
		f.Rows[i] = rowJSON{
			Active:      activeJSON{Tid: r.Active.Tid, Node: nodeFromEvent(r.Active.Event)},
			ActiveIndex: r.ActiveIndex,
			CurTids:     r.CurTids,
			Input:       threadsToJSON(r.Input),
			Output:      threadsToJSON(r.Output),
		}
	}
	return f
}

func (f layoutFile) view() *layout.View {
	v := &layout.View{
		Rows:       make([]layout.Row, len(f.Rows)),
		Unresolved: f.Unresolved,
		Truncated:  f.Truncated,
	}
	for i, r := range f.Rows {
		v.Rows[i] = layout.Row{
			Active:      layout.Active{Tid: r.Active.Tid, Event: r.Active.Node.event()},
			ActiveIndex: r.ActiveIndex,
			CurTids:     r.CurTids,
			Input:       threadsFromJSON(r.Input),
			Output:      threadsFromJSON(r.Output),
		}
	}
	return v
}
