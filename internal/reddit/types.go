package reddit

// tokenResponse is the OAuth access token envelope.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
	Error       string `json:"error"`
}

// listingResponse is the Reddit listing envelope returned by /r/<sub>/new.
// Only the fields the scraper consumes are mapped.
type listingResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				Title     string `json:"title"`
				Name      string `json:"name"`
				Subreddit string `json:"subreddit"`
			} `json:"data"`
		} `json:"children"`
		// After is the fullname cursor for the next page; empty when the
		// listing is exhausted.
		After string `json:"after"`
	} `json:"data"`
}

// Page is one page of listing results.
type Page struct {
	Posts []Post
	// After is the pagination cursor to pass to the next request.
	After string
}

// Post is a single listing entry as returned by the API.
type Post struct {
	Subreddit string
	Title     string
	// Fullname is the globally unique thing ID (e.g. "t3_abc123").
	Fullname string
}
