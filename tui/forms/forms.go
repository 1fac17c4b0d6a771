// Package forms provides huh-based prompts for the CLI.
package forms

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/user/shorts-clipper-cli/segment"
)

// SegmentLabel is the one-line description of a segment in the picker.
func SegmentLabel(seg segment.Segment) string {
	label := fmt.Sprintf("%s-%s  %s", seg.StartTime, seg.EndTime, seg.Topic)
	if seg.ViralPotential != "" {
		label += fmt.Sprintf(" [%s]", seg.ViralPotential)
	}
	if seg.ContentType != "" {
		label += " (" + seg.ContentType + ")"
	}
	return label
}

// NewSegmentPicker creates a multi-select over segs. Every segment starts
// selected; the chosen indexes are written to selected.
func NewSegmentPicker(segs []segment.Segment, selected *[]int) *huh.Form {
	opts := make([]huh.Option[int], len(segs))
	*selected = (*selected)[:0]
	for i, s := range segs {
		opts[i] = huh.NewOption(SegmentLabel(s), i).Selected(true)
		*selected = append(*selected, i)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[int]().
				Title("Segments to cut").
				Description("space toggles, enter confirms").
				Options(opts...).
				Value(selected),
		),
	).WithTheme(Theme())
}

// Selected returns segs filtered to the given indexes, in input order.
// Out-of-range indexes are ignored.
func Selected(segs []segment.Segment, idx []int) []segment.Segment {
	keep := make(map[int]bool, len(idx))
	for _, i := range idx {
		keep[i] = true
	}
	var out []segment.Segment
	for i, s := range segs {
		if keep[i] {
			out = append(out, s)
		}
	}
	return out
}

// Pick runs the segment picker and returns the chosen segments.
func Pick(segs []segment.Segment) ([]segment.Segment, error) {
	var idx []int
	if err := NewSegmentPicker(segs, &idx).Run(); err != nil {
		return nil, err
	}
	return Selected(segs, idx), nil
}

// NewConfirmForm creates a yes/no prompt bound to ok.
func NewConfirmForm(title, description string, ok *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(ok),
		),
	).WithTheme(Theme())
}
