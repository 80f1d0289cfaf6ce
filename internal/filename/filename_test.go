// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filename

import (
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		file string
		want Hints
	}{
		{
			name: "zotero export",
			file: "Smith - 2020 - Machine Learning Basics.pdf",
			want: Hints{Author: "Smith", Year: "2020", Title: "Machine Learning Basics", Confidence: 0.90},
		},
		{
			name: "author parenthesized year title",
			file: "Smith (2020) Deep Learning.pdf",
			want: Hints{Author: "Smith", Year: "2020", Title: "Deep Learning", Confidence: 0.85},
		},
		{
			name: "author parenthesized year no title",
			file: "Smith (2020).pdf",
			want: Hints{Author: "Smith", Year: "2020", Confidence: 0.765},
		},
		{
			name: "underscore separated",
			file: "Smith_2020_Neural_Networks.pdf",
			want: Hints{Author: "Smith", Year: "2020", Title: "Neural_Networks", Confidence: 0.75},
		},
		{
			name: "space separated with title",
			file: "Smith 2020 Attention Is All You Need.pdf",
			want: Hints{Author: "Smith", Year: "2020", Title: "Attention Is All You Need", Confidence: 0.75},
		},
		{
			name: "author underscore year",
			file: "Smith_2020.pdf",
			want: Hints{Author: "Smith", Year: "2020", Confidence: 0.60},
		},
		{
			name: "concatenated author year",
			file: "Smith2020.pdf",
			want: Hints{Author: "Smith", Year: "2020", Confidence: 0.60},
		},
		{
			name: "author space year",
			file: "Smith 2020.pdf",
			want: Hints{Author: "Smith", Year: "2020", Confidence: 0.65},
		},
		{
			name: "year underscore author",
			file: "2020_Smith.pdf",
			want: Hints{Author: "Smith", Year: "2020", Confidence: 0.55},
		},
		{
			name: "bare year in noise",
			file: "IMG_20200115.pdf",
			want: Hints{Year: "2020", Confidence: 0.30},
		},
		{
			name: "no structure at all",
			file: "document.pdf",
			want: Hints{},
		},
		{
			name: "multi author ampersand",
			file: "Smith & Jones (2019) Graph Theory.pdf",
			want: Hints{Author: "Smith & Jones", Year: "2019", Title: "Graph Theory", Confidence: 0.85},
		},
		{
			name: "whitespace collapsed in author",
			file: "Smith  &   Jones (2019) Graphs.pdf",
			want: Hints{Author: "Smith & Jones", Year: "2019", Title: "Graphs", Confidence: 0.85},
		},
		{
			name: "uppercase extension",
			file: "Smith_2020.PDF",
			want: Hints{Author: "Smith", Year: "2020", Confidence: 0.60},
		},
		{
			name: "implausible year rejects the shape",
			file: "Catalog 0042.pdf",
			want: Hints{},
		},
		{
			name: "year too far in the future",
			file: "Smith_2150.pdf",
			want: Hints{},
		},
		{
			name: "future year within range",
			file: "Smith_2099_Speculation.pdf",
			want: Hints{Author: "Smith", Year: "2099", Title: "Speculation", Confidence: 0.75},
		},
		{
			name: "boundary year 1800",
			file: "Smith_1800.pdf",
			want: Hints{Author: "Smith", Year: "1800", Confidence: 0.60},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.file)
			if got.Author != tt.want.Author || got.Year != tt.want.Year || got.Title != tt.want.Title {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.file, got, tt.want)
			}
			if math.Abs(got.Confidence-tt.want.Confidence) > 1e-9 {
				t.Errorf("Parse(%q) confidence = %v, want %v", tt.file, got.Confidence, tt.want.Confidence)
			}
		})
	}
}
