package models

// Engagement carries the public engagement counters attached to a post.
type Engagement struct {
	RetweetCount int `json:"retweet_count"`
	ReplyCount   int `json:"reply_count"`
	LikeCount    int `json:"like_count"`
	QuoteCount   int `json:"quote_count"`
}

type Reply struct {
	ID                   string         `json:"id"`
	Text                 string         `json:"text"`
	CreatedAt            string         `json:"created_at"`
	AuthorID             string         `json:"author_id"`
	HazardClassification string         `json:"hazard_classification"`
	Engagement           Engagement     `json:"engagement"`
	KeywordFrequency     map[string]int `json:"keyword_frequency"`
}

// Post is a single fetched post after classification and keyword extraction.
// Immutable once built; owned by the pipeline invocation that fetched it.
type Post struct {
	ID                   string         `json:"id"`
	Text                 string         `json:"text"`
	CreatedAt            string         `json:"created_at"`
	AuthorID             string         `json:"author_id"`
	ConversationID       string         `json:"conversation_id"`
	HazardClassification string         `json:"hazard_classification"`
	SentimentScore       float64        `json:"sentiment_score"`
	SentimentLabel       string         `json:"sentiment_label"`
	Engagement           Engagement     `json:"engagement"`
	KeywordFrequency     map[string]int `json:"keyword_frequency"`
	DirectReplies        []Reply        `json:"direct_replies,omitempty"`
}

// FetchResponse is the full result of one fetch-and-analyze invocation.
type FetchResponse struct {
	Query          string         `json:"query"`
	TimeWindow     string         `json:"time_window"`
	HazardFilter   string         `json:"hazard_filter,omitempty"`
	LocationFilter string         `json:"location_filter,omitempty"`
	Posts          []Post         `json:"posts"`
	KeywordSummary map[string]int `json:"keyword_summary"`
}
