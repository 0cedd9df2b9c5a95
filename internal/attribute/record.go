package attribute

import "strings"

// AttributeRecord is the normalized result for one detail page
type AttributeRecord struct {
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Attributes []string `json:"attributes"`
}

// DetailInfo joins the attributes into the single 상세정보 column
func (r AttributeRecord) DetailInfo() string {
	return strings.Join(r.Attributes, "/")
}

// KeyValues splits every attribute at its first colon
func (r AttributeRecord) KeyValues() [][2]string {
	kvs := make([][2]string, 0, len(r.Attributes))
	for _, attr := range r.Attributes {
		k, v, _ := strings.Cut(attr, ":")
		kvs = append(kvs, [2]string{k, v})
	}
	return kvs
}
