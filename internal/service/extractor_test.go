package service

import (
	"testing"

	"chatimmo/internal/model"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int             { return &v }
func float64Ptr(v float64) *float64 { return &v }
func strPtr(v string) *string       { return &v }

func TestIntentParser_Parse(t *testing.T) {
	parser := NewIntentParser()

	tests := []struct {
		name    string
		text    string
		want    model.Query
		matched []string
	}{
		{
			name:    "no recognizable slot",
			text:    "hello there",
			want:    model.Query{},
			matched: []string{},
		},
		{
			name:    "bedrooms singular and plural",
			text:    "I need 1 bedroom",
			want:    model.Query{BedroomsMin: intPtr(1)},
			matched: []string{SlotBedrooms},
		},
		{
			name:    "case-insensitive price",
			text:    "PRICE UNDER 1500 please",
			want:    model.Query{PriceMax: float64Ptr(1500)},
			matched: []string{SlotPrice},
		},
		{
			name:    "surface is not a location",
			text:    "surface at least 80",
			want:    model.Query{SurfaceMin: float64Ptr(80)},
			matched: []string{SlotSurface},
		},
		{
			name: "all slots",
			text: "3 bedrooms in Lac2 price under 2000 surface at least 120",
			want: model.Query{
				BedroomsMin: intPtr(3),
				PriceMax:    float64Ptr(2000),
				SurfaceMin:  float64Ptr(120),
				Location:    strPtr("Lac2"),
			},
			matched: []string{SlotBedrooms, SlotPrice, SlotSurface, SlotLocation},
		},
		{
			name:    "location after at least",
			text:    "surface at least 100 near Tunis",
			want:    model.Query{SurfaceMin: float64Ptr(100), Location: strPtr("Tunis")},
			matched: []string{SlotSurface, SlotLocation},
		},
		{
			name:    "location alias",
			text:    "2 bedrooms near les berges du lac 2",
			want:    model.Query{BedroomsMin: intPtr(2), Location: strPtr("Lac2")},
			matched: []string{SlotBedrooms, SlotLocation},
		},
		{
			name:    "location stops at punctuation",
			text:    "Anything in Tunis?",
			want:    model.Query{Location: strPtr("Tunis")},
			matched: []string{SlotLocation},
		},
		{
			name:    "preposition must start a word",
			text:    "a flat with 2 bedrooms",
			want:    model.Query{BedroomsMin: intPtr(2)},
			matched: []string{SlotBedrooms},
		},
		{
			name:    "first occurrence wins",
			text:    "2 bedrooms or 4 bedrooms",
			want:    model.Query{BedroomsMin: intPtr(2)},
			matched: []string{SlotBedrooms},
		},
		{
			name:    "zero is a value",
			text:    "0 bedrooms",
			want:    model.Query{BedroomsMin: intPtr(0)},
			matched: []string{SlotBedrooms},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parser.Parse(tt.text)
			assert.Equal(t, tt.want, got.Query)
			assert.Equal(t, tt.matched, got.Matched)
		})
	}
}

func TestIntentParser_EmptyText(t *testing.T) {
	got := NewIntentParser().Parse("")
	assert.True(t, got.Query.IsEmpty())
	assert.Empty(t, got.Matched)
}
