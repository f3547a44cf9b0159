package models

const (
	BlockTypeBlock     = "block"
	BlockTypeImage     = "image"
	BlockTypeCodeBlock = "codeBlock"

	SpanTypeSpan = "span"
)

// Blocks is a structured rich text document.
type Blocks []Block

// Block is one node of a rich text document. Text blocks use Style, ListItem,
// Level, Children and MarkDefs; embedded images use the image fields; code
// blocks use Code and Language. Unknown node types keep whatever of these
// fields they carry.
type Block struct {
	Type     string    `json:"_type"`
	Key      string    `json:"_key,omitempty"`
	Style    string    `json:"style,omitempty"`
	ListItem string    `json:"listItem,omitempty"`
	Level    int       `json:"level,omitempty"`
	Children []Span    `json:"children,omitempty"`
	MarkDefs []MarkDef `json:"markDefs,omitempty"`

	Asset   *ImageAsset `json:"asset,omitempty"`
	Hotspot *Hotspot    `json:"hotspot,omitempty"`
	Crop    *Crop       `json:"crop,omitempty"`
	Alt     string      `json:"alt,omitempty"`

	Code     string `json:"code,omitempty"`
	Language string `json:"language,omitempty"`

	Text string `json:"text,omitempty"`
}

type Span struct {
	Type  string   `json:"_type"`
	Key   string   `json:"_key,omitempty"`
	Text  string   `json:"text"`
	Marks []string `json:"marks,omitempty"`
}

// MarkDef is an annotation referenced by key from Span.Marks.
type MarkDef struct {
	Key  string `json:"_key"`
	Type string `json:"_type"`
	Href string `json:"href,omitempty"`
}

// Image returns the embedded image of an image block.
func (b Block) Image() *Image {
	if b.Asset == nil {
		return nil
	}
	return &Image{Asset: b.Asset, Hotspot: b.Hotspot, Crop: b.Crop, Alt: b.Alt}
}
