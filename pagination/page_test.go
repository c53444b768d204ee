package pagination

import (
	"testing"

	"github.com/goliatone/go-errors"
)

func TestDefaultRequest(t *testing.T) {
	req := DefaultRequest()

	if req.Page != 0 {
		t.Errorf("expected page 0, got %d", req.Page)
	}
	if req.Size != 20 {
		t.Errorf("expected size 20, got %d", req.Size)
	}
	if req.SortBy != "createdAt" {
		t.Errorf("expected sortBy createdAt, got %q", req.SortBy)
	}
	if !req.IsNewest {
		t.Error("expected isNewest to default to true")
	}
}

func TestRequest_Normalize(t *testing.T) {
	req := Request{Page: 3}.Normalize()
	if req.Size != DefaultSize || req.SortBy != DefaultSortBy || req.Page != 3 {
		t.Errorf("unexpected normalized request: %+v", req)
	}
}

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{name: "default", req: DefaultRequest()},
		{name: "max size", req: Request{Page: 1, Size: MaxSize, SortBy: "title"}},
		{name: "negative page", req: Request{Page: -1, Size: 10, SortBy: "title"}, wantErr: true},
		{name: "size too large", req: Request{Size: MaxSize + 1, SortBy: "title"}, wantErr: true},
		{name: "zero size", req: Request{SortBy: "title"}, wantErr: true},
		{name: "missing sort", req: Request{Size: 10}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected validation error")
				}
				if !errors.IsValidation(err) {
					t.Errorf("expected validation category, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name      string
		content   []int
		req       Request
		total     int64
		wantPages int
		wantFirst bool
		wantLast  bool
	}{
		{name: "empty collection", content: nil, req: DefaultRequest(), total: 0, wantPages: 0, wantFirst: true, wantLast: true},
		{name: "first of many", content: []int{1, 2}, req: Request{Page: 0, Size: 2}, total: 5, wantPages: 3, wantFirst: true},
		{name: "middle", content: []int{3, 4}, req: Request{Page: 1, Size: 2}, total: 5, wantPages: 3},
		{name: "last partial", content: []int{5}, req: Request{Page: 2, Size: 2}, total: 5, wantPages: 3, wantLast: true},
		{name: "exact fit", content: []int{1, 2}, req: Request{Page: 0, Size: 2}, total: 2, wantPages: 1, wantFirst: true, wantLast: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Build(tt.content, tt.req, tt.total)
			if page.TotalPages != tt.wantPages {
				t.Errorf("expected %d pages, got %d", tt.wantPages, page.TotalPages)
			}
			if page.IsFirst != tt.wantFirst {
				t.Errorf("expected isFirst %v, got %v", tt.wantFirst, page.IsFirst)
			}
			if page.IsLast != tt.wantLast {
				t.Errorf("expected isLast %v, got %v", tt.wantLast, page.IsLast)
			}
			if page.Content == nil {
				t.Error("content must never be nil")
			}
			if page.TotalElements != tt.total {
				t.Errorf("expected total %d, got %d", tt.total, page.TotalElements)
			}
		})
	}
}

func TestMap(t *testing.T) {
	src := Build([]int{1, 2, 3}, Request{Page: 1, Size: 3}, 7)
	dst := Map(src, func(v int) string { return string(rune('a' + v - 1)) })

	if len(dst.Content) != 3 || dst.Content[0] != "a" || dst.Content[2] != "c" {
		t.Errorf("unexpected content: %v", dst.Content)
	}
	if dst.PageNumber != 1 || dst.TotalElements != 7 || dst.TotalPages != 3 {
		t.Errorf("metadata not preserved: %+v", dst)
	}
}
