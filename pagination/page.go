package pagination

// Page is one slice of a larger ordered collection together with the
// metadata a client needs to navigate it.
type Page[T any] struct {
	Content       []T   `json:"content" msgpack:"content"`
	TotalElements int64 `json:"totalElements" msgpack:"totalElements"`
	TotalPages    int   `json:"totalPages" msgpack:"totalPages"`
	PageNumber    int   `json:"pageNumber" msgpack:"pageNumber"`
	PageSize      int   `json:"pageSize" msgpack:"pageSize"`
	IsFirst       bool  `json:"isFirst" msgpack:"isFirst"`
	IsLast        bool  `json:"isLast" msgpack:"isLast"`
}

// Build assembles a page from the rows of the requested slice and the
// total number of rows in the collection.
func Build[T any](content []T, req Request, total int64) Page[T] {
	req = req.Normalize()
	if content == nil {
		content = []T{}
	}

	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}

	return Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		PageNumber:    req.Page,
		PageSize:      req.Size,
		IsFirst:       req.Page == 0,
		IsLast:        req.Page+1 >= totalPages,
	}
}

// Map converts the content of a page keeping its metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(p.Content))
	for _, item := range p.Content {
		out = append(out, fn(item))
	}
	return Page[U]{
		Content:       out,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		PageNumber:    p.PageNumber,
		PageSize:      p.PageSize,
		IsFirst:       p.IsFirst,
		IsLast:        p.IsLast,
	}
}

// Empty reports whether the page carries no content.
func (p Page[T]) Empty() bool {
	return len(p.Content) == 0
}
