package models

// Wire types for the recent-search API response.

type TwitterPublicMetrics struct {
	RetweetCount int `json:"retweet_count"`
	ReplyCount   int `json:"reply_count"`
	LikeCount    int `json:"like_count"`
	QuoteCount   int `json:"quote_count"`
}

type TwitterPost struct {
	ID             string               `json:"id"`
	Text           string               `json:"text"`
	AuthorID       string               `json:"author_id"`
	CreatedAt      string               `json:"created_at"`
	ConversationID string               `json:"conversation_id"`
	PublicMetrics  TwitterPublicMetrics `json:"public_metrics"`
}

type TwitterSearchMeta struct {
	NewestID    string `json:"newest_id"`
	OldestID    string `json:"oldest_id"`
	ResultCount int    `json:"result_count"`
	NextToken   string `json:"next_token,omitempty"`
}

type TwitterSearchResponse struct {
	Data []TwitterPost     `json:"data"`
	Meta TwitterSearchMeta `json:"meta"`
}

// ToPost converts a wire post into the pipeline's Post shape. Classification,
// sentiment, and keyword fields are filled in later by the pipeline.
func (t TwitterPost) ToPost() Post {
	return Post{
		ID:             t.ID,
		Text:           t.Text,
		CreatedAt:      t.CreatedAt,
		AuthorID:       t.AuthorID,
		ConversationID: t.ConversationID,
		Engagement: Engagement{
			RetweetCount: t.PublicMetrics.RetweetCount,
			ReplyCount:   t.PublicMetrics.ReplyCount,
			LikeCount:    t.PublicMetrics.LikeCount,
			QuoteCount:   t.PublicMetrics.QuoteCount,
		},
	}
}
