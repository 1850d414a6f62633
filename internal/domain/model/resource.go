package model

// ResourceKind is the closed set of crisis resource shapes. Resolving the
// shape here, once, keeps render layers from guessing from string contents.
type ResourceKind string

const (
	ResourcePhone   ResourceKind = "phone"
	ResourceText    ResourceKind = "text"
	ResourceWebsite ResourceKind = "website"
)

// Resource is one contact option offered alongside a crisis response.
type Resource struct {
	Kind    ResourceKind `json:"kind"`
	Name    string       `json:"name"`
	Number  string       `json:"number,omitempty"`  // phone variant
	Keyword string       `json:"keyword,omitempty"` // text variant: message to send
	URL     string       `json:"url,omitempty"`     // website variant
}

func PhoneResource(name, number string) Resource {
	return Resource{Kind: ResourcePhone, Name: name, Number: number}
}

func TextResource(name, keyword, number string) Resource {
	return Resource{Kind: ResourceText, Name: name, Keyword: keyword, Number: number}
}

func WebsiteResource(name, url string) Resource {
	return Resource{Kind: ResourceWebsite, Name: name, URL: url}
}
