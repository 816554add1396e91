package api

// DateResponse from GET /date/{month}/{day}
type DateResponse struct {
	Date string   `json:"date"` // e.g. "July 20"
	URL  string   `json:"url"`  // Wikipedia page of the day
	Data DateData `json:"data"`
}

// DateData holds the three upstream collections. Any of them may be absent.
type DateData struct {
	Events []APIRecord `json:"Events"`
	Births []APIRecord `json:"Births"`
	Deaths []APIRecord `json:"Deaths"`
}

// APIRecord is a single raw entry.
type APIRecord struct {
	Year  string    `json:"year"` // "1969", "44 BC", "AD 79"
	Text  string    `json:"text"`
	HTML  string    `json:"html,omitempty"`
	Links []APILink `json:"links,omitempty"`
	Pages []APIPage `json:"pages,omitempty"`
}

// APILink is an inline reference link.
type APILink struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// APIPage is a page object carrying nested reference URLs.
// Wikimedia-style payloads use content_urls, older ones content.urls.
type APIPage struct {
	Title       string       `json:"title"`
	Content     *PageContent `json:"content,omitempty"`
	ContentURLs *PageURLs    `json:"content_urls,omitempty"`
}

// PageContent wraps the URL set of a page.
type PageContent struct {
	URLs *PageURLs `json:"urls,omitempty"`
}

// PageURLs groups URLs by platform.
type PageURLs struct {
	Desktop *PageURL `json:"desktop,omitempty"`
	Mobile  *PageURL `json:"mobile,omitempty"`
}

// PageURL is a single platform's link.
type PageURL struct {
	Page string `json:"page"`
}
