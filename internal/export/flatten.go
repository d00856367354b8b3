// Package export turns merge results into their consumable forms: flat
// record lists, text digests, persisted JSON, the compact wire format, and
// annotated images.
package export

import (
	"fmt"
	"strings"

	"screen-parser/internal/element"
)

// Record is the flattened form of one element, the row format consumed by
// downstream automation.
type Record struct {
	ID            int                   `json:"id"`
	Type          element.Class         `json:"type"`
	BBox          [4]int                `json:"bbox"`
	Width         int                   `json:"width"`
	Height        int                   `json:"height"`
	Content       string                `json:"content"`
	Parent        *int                  `json:"parent,omitempty"`
	Children      []int                 `json:"children,omitzero"`
	Interactivity element.Interactivity `json:"interactivity"`
	Source        string                `json:"source"`
}

// Flatten converts a merge result into records, preserving element order.
// The source tag marks provenance (combined vs fallback).
func Flatten(result *element.MergeResult, source string) []Record {
	records := make([]Record, 0, len(result.Compos))
	for _, ele := range result.Compos {
		rec := Record{
			ID:            ele.ID,
			Type:          ele.Class,
			BBox:          [4]int{ele.ColumnMin, ele.RowMin, ele.ColumnMax, ele.RowMax},
			Width:         ele.Width,
			Height:        ele.Height,
			Content:       ele.Content,
			Interactivity: ele.Interactivity,
			Source:        source,
		}
		if rec.Content == "" {
			rec.Content = ele.TextContent
		}
		if ele.Parent != nil {
			parent := *ele.Parent
			rec.Parent = &parent
		}
		if ele.Children != nil {
			rec.Children = append([]int{}, ele.Children...)
		}
		records = append(records, rec)
	}
	return records
}

// Digest renders records as a plain-text summary, one line per record, for
// consumers that do not parse structured JSON.
func Digest(records []Record) string {
	lines := make([]string, 0, len(records))
	for _, rec := range records {
		lines = append(lines, fmt.Sprintf(
			"type: %s, bbox: [%d, %d, %d, %d], interactivity: %s, content: %s, source: %s",
			rec.Type, rec.BBox[0], rec.BBox[1], rec.BBox[2], rec.BBox[3],
			rec.Interactivity, rec.Content, rec.Source))
	}
	return strings.Join(lines, "\n")
}
