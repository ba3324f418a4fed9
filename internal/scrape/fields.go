package scrape

// Field names a single video metadata attribute. Parsers return
// map[Field]any payloads; Video.apply stores them on the typed struct.
type Field string

const (
	FieldTitle             Field = "title"
	FieldDescription       Field = "description"
	FieldPublishDatetime   Field = "publish_datetime"
	FieldFileURL           Field = "file_url"
	FieldFileURLIsFlaky    Field = "file_url_is_flaky"
	FieldFlashEnclosureURL Field = "flash_enclosure_url"
	FieldIsEmbeddable      Field = "is_embeddable"
	FieldEmbedCode         Field = "embed_code"
	FieldThumbnailURL      Field = "thumbnail_url"
	FieldUser              Field = "user"
	FieldUserURL           Field = "user_url"
	FieldTags              Field = "tags"
	FieldLink              Field = "link"
)

// AllFields lists every known field in canonical order. Videos that are
// constructed without an explicit field selection request all of them.
var AllFields = []Field{
	FieldTitle,
	FieldDescription,
	FieldPublishDatetime,
	FieldFileURL,
	FieldFileURLIsFlaky,
	FieldFlashEnclosureURL,
	FieldIsEmbeddable,
	FieldEmbedCode,
	FieldThumbnailURL,
	FieldUser,
	FieldUserURL,
	FieldTags,
	FieldLink,
}

// FieldSet is an unordered set of fields, used for per-strategy coverage
// declarations.
type FieldSet map[Field]struct{}

// NewFieldSet builds a set from the given fields.
func NewFieldSet(fields ...Field) FieldSet {
	s := make(FieldSet, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

// Contains reports whether f is in the set.
func (s FieldSet) Contains(f Field) bool {
	_, ok := s[f]
	return ok
}

// Union returns a new set with the contents of both s and other.
func (s FieldSet) Union(other FieldSet) FieldSet {
	out := make(FieldSet, len(s)+len(other))
	for f := range s {
		out[f] = struct{}{}
	}
	for f := range other {
		out[f] = struct{}{}
	}
	return out
}

func validField(f Field) bool {
	for _, known := range AllFields {
		if f == known {
			return true
		}
	}
	return false
}
