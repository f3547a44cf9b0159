package models

// Image is a weak reference to an image asset plus display metadata.
// Queries that dereference the asset fill in ImageAsset.URL and ImageAsset.ID;
// raw documents only carry ImageAsset.Ref.
type Image struct {
	Asset   *ImageAsset `json:"asset,omitempty"`
	Hotspot *Hotspot    `json:"hotspot,omitempty"`
	Crop    *Crop       `json:"crop,omitempty"`
	Alt     string      `json:"alt,omitempty"`
}

type ImageAsset struct {
	Ref string `json:"_ref,omitempty"`
	ID  string `json:"_id,omitempty"`
	URL string `json:"url,omitempty"`
}

type Hotspot struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Crop struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// AssetID returns the asset identifier, preferring the dereferenced id.
func (i *Image) AssetID() string {
	if i == nil || i.Asset == nil {
		return ""
	}
	if i.Asset.ID != "" {
		return i.Asset.ID
	}
	return i.Asset.Ref
}

// ResolvedURL returns the URL filled in by a dereferencing query, if any.
func (i *Image) ResolvedURL() string {
	if i == nil || i.Asset == nil {
		return ""
	}
	return i.Asset.URL
}
