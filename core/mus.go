package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted types. Written by hand in the shape the
// generator emits so storage stays reflection-free at runtime.

var (
	// ItemMUS serializes Item values.
	ItemMUS = itemMUS{}
	// DigestMUS serializes Digest values.
	DigestMUS = digestMUS{}
)

// Timestamps are stored as Unix microseconds.

func marshalTime(v time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (v time.Time, n int, err error) {
	us, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = time.UnixMicro(us).UTC()
	return
}

func sizeTime(v time.Time) (size int) {
	return varint.Int64.Size(v.UnixMicro())
}

func marshalStrings(v []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return
}

func unmarshalStrings(bs []byte) (v []string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return
	}
	var (
		s  string
		n1 int
	)
	v = make([]string, 0, length)
	for i := 0; i < length; i++ {
		s, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		v = append(v, s)
	}
	return
}

func sizeStrings(v []string) (size int) {
	size = varint.Int.Size(len(v))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return
}

type annotationMUS struct{}

func (annotationMUS) Marshal(v Annotation, bs []byte) (n int) {
	n = ord.String.Marshal(v.DisplayTitle, bs)
	n += ord.String.Marshal(v.Summary, bs[n:])
	n += marshalStrings(v.KeyPoints, bs[n:])
	n += marshalStrings(v.Entities, bs[n:])
	n += ord.String.Marshal(v.Cluster, bs[n:])
	return
}

func (annotationMUS) Unmarshal(bs []byte) (v Annotation, n int, err error) {
	var n1 int
	v.DisplayTitle, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Summary, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.KeyPoints, n1, err = unmarshalStrings(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Entities, n1, err = unmarshalStrings(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Cluster, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (annotationMUS) Size(v Annotation) (size int) {
	size = ord.String.Size(v.DisplayTitle)
	size += ord.String.Size(v.Summary)
	size += sizeStrings(v.KeyPoints)
	size += sizeStrings(v.Entities)
	size += ord.String.Size(v.Cluster)
	return
}

type itemMUS struct{}

func (itemMUS) Marshal(v Item, bs []byte) (n int) {
	n = ord.String.Marshal(v.Key, bs)
	n += ord.String.Marshal(v.URL, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Description, bs[n:])
	n += ord.String.Marshal(v.Body, bs[n:])
	n += ord.String.Marshal(v.Source, bs[n:])
	n += ord.String.Marshal(v.Language, bs[n:])
	n += ord.String.Marshal(v.Image, bs[n:])
	n += marshalTime(v.Published, bs[n:])
	n += marshalTime(v.FetchedAt, bs[n:])
	n += ord.Bool.Marshal(v.Annotation != nil, bs[n:])
	if v.Annotation != nil {
		n += annotationMUS{}.Marshal(*v.Annotation, bs[n:])
	}
	n += ord.String.Marshal(v.Category, bs[n:])
	n += ord.Bool.Marshal(v.Subs != nil, bs[n:])
	if v.Subs != nil {
		for _, s := range v.Subs {
			n += varint.Int.Marshal(s, bs[n:])
		}
	}
	n += varint.Float64.Marshal(v.Score, bs[n:])
	n += ord.Bool.Marshal(v.Relevant, bs[n:])
	n += ord.Bool.Marshal(v.Recent, bs[n:])
	n += ord.Bool.Marshal(v.Duplicate, bs[n:])
	n += ord.String.Marshal(v.Origin, bs[n:])
	n += varint.Int.Marshal(len(v.Related), bs[n:])
	for _, id := range v.Related {
		n += varint.Uint64.Marshal(uint64(id), bs[n:])
	}
	return
}

func (itemMUS) Unmarshal(bs []byte) (v Item, n int, err error) {
	var n1 int
	for _, dst := range []*string{
		&v.Key, &v.URL, &v.Title, &v.Description,
		&v.Body, &v.Source, &v.Language, &v.Image,
	} {
		*dst, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	v.Published, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.FetchedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var present bool
	present, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if present {
		var a Annotation
		a, n1, err = annotationMUS{}.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		v.Annotation = &a
	}
	v.Category, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	present, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if present {
		var subs SubScores
		for i := range subs {
			subs[i], n1, err = varint.Int.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
		}
		v.Subs = &subs
	}
	v.Score, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	for _, dst := range []*bool{&v.Relevant, &v.Recent, &v.Duplicate} {
		*dst, n1, err = ord.Bool.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	v.Origin, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var length int
	length, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if length > 0 {
		v.Related = make([]ID, 0, length)
		var raw uint64
		for i := 0; i < length; i++ {
			raw, n1, err = varint.Uint64.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
			v.Related = append(v.Related, ID(raw))
		}
	}
	return
}

func (itemMUS) Size(v Item) (size int) {
	for _, s := range []string{
		v.Key, v.URL, v.Title, v.Description,
		v.Body, v.Source, v.Language, v.Image,
	} {
		size += ord.String.Size(s)
	}
	size += sizeTime(v.Published)
	size += sizeTime(v.FetchedAt)
	size += ord.Bool.Size(v.Annotation != nil)
	if v.Annotation != nil {
		size += annotationMUS{}.Size(*v.Annotation)
	}
	size += ord.String.Size(v.Category)
	size += ord.Bool.Size(v.Subs != nil)
	if v.Subs != nil {
		for _, s := range v.Subs {
			size += varint.Int.Size(s)
		}
	}
	size += varint.Float64.Size(v.Score)
	size += ord.Bool.Size(v.Relevant)
	size += ord.Bool.Size(v.Recent)
	size += ord.Bool.Size(v.Duplicate)
	size += ord.String.Size(v.Origin)
	size += varint.Int.Size(len(v.Related))
	for _, id := range v.Related {
		size += varint.Uint64.Size(uint64(id))
	}
	return
}

func marshalItems(v []Item, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, it := range v {
		n += ItemMUS.Marshal(it, bs[n:])
	}
	return
}

func unmarshalItems(bs []byte) (v []Item, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return
	}
	var (
		it Item
		n1 int
	)
	v = make([]Item, 0, length)
	for i := 0; i < length; i++ {
		it, n1, err = ItemMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		v = append(v, it)
	}
	return
}

func sizeItems(v []Item) (size int) {
	size = varint.Int.Size(len(v))
	for _, it := range v {
		size += ItemMUS.Size(it)
	}
	return
}

func marshalItemMap(v map[string][]Item, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for key, items := range v {
		n += ord.String.Marshal(key, bs[n:])
		n += marshalItems(items, bs[n:])
	}
	return
}

func unmarshalItemMap(bs []byte) (v map[string][]Item, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	var (
		key   string
		items []Item
		n1    int
	)
	v = make(map[string][]Item, length)
	for i := 0; i < length; i++ {
		key, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		items, n1, err = unmarshalItems(bs[n:])
		n += n1
		if err != nil {
			return
		}
		v[key] = items
	}
	return
}

func sizeItemMap(v map[string][]Item) (size int) {
	size = varint.Int.Size(len(v))
	for key, items := range v {
		size += ord.String.Size(key)
		size += sizeItems(items)
	}
	return
}

type stageErrorMUS struct{}

func (stageErrorMUS) Marshal(v StageError, bs []byte) (n int) {
	n = ord.String.Marshal(v.Stage, bs)
	n += ord.String.Marshal(v.Message, bs[n:])
	n += marshalTime(v.At, bs[n:])
	return
}

func (stageErrorMUS) Unmarshal(bs []byte) (v StageError, n int, err error) {
	var n1 int
	v.Stage, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Message, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.At, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (stageErrorMUS) Size(v StageError) (size int) {
	return ord.String.Size(v.Stage) + ord.String.Size(v.Message) + sizeTime(v.At)
}

type digestMUS struct{}

func (digestMUS) Marshal(v Digest, bs []byte) (n int) {
	n = ord.String.Marshal(v.Date, bs)
	n += marshalItems(v.Highlights, bs[n:])
	n += marshalItemMap(v.Categories, bs[n:])
	n += marshalStrings(v.CategoryOrder, bs[n:])
	n += marshalItemMap(v.Sources, bs[n:])
	n += marshalStrings(v.SourceOrder, bs[n:])
	n += varint.Int.Marshal(v.TotalCount, bs[n:])
	n += varint.Int.Marshal(len(v.Errors), bs[n:])
	for _, e := range v.Errors {
		n += stageErrorMUS{}.Marshal(e, bs[n:])
	}
	n += varint.Int.Marshal(len(v.Timings), bs[n:])
	for stage, secs := range v.Timings {
		n += ord.String.Marshal(stage, bs[n:])
		n += varint.Float64.Marshal(secs, bs[n:])
	}
	n += marshalStrings(v.Warnings, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return
}

func (digestMUS) Unmarshal(bs []byte) (v Digest, n int, err error) {
	var n1 int
	v.Date, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Highlights, n1, err = unmarshalItems(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Categories, n1, err = unmarshalItemMap(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CategoryOrder, n1, err = unmarshalStrings(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Sources, n1, err = unmarshalItemMap(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SourceOrder, n1, err = unmarshalStrings(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.TotalCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var length int
	length, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if length > 0 {
		v.Errors = make([]StageError, 0, length)
		var e StageError
		for i := 0; i < length; i++ {
			e, n1, err = stageErrorMUS{}.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
			v.Errors = append(v.Errors, e)
		}
	}
	length, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Timings = make(map[string]float64, length)
	var (
		stage string
		secs  float64
	)
	for i := 0; i < length; i++ {
		stage, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		secs, n1, err = varint.Float64.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		v.Timings[stage] = secs
	}
	v.Warnings, n1, err = unmarshalStrings(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (digestMUS) Size(v Digest) (size int) {
	size = ord.String.Size(v.Date)
	size += sizeItems(v.Highlights)
	size += sizeItemMap(v.Categories)
	size += sizeStrings(v.CategoryOrder)
	size += sizeItemMap(v.Sources)
	size += sizeStrings(v.SourceOrder)
	size += varint.Int.Size(v.TotalCount)
	size += varint.Int.Size(len(v.Errors))
	for _, e := range v.Errors {
		size += stageErrorMUS{}.Size(e)
	}
	size += varint.Int.Size(len(v.Timings))
	for stage, secs := range v.Timings {
		size += ord.String.Size(stage)
		size += varint.Float64.Size(secs)
	}
	size += sizeStrings(v.Warnings)
	size += sizeTime(v.UpdatedAt)
	return
}
