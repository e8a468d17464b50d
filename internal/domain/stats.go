package domain

// Stats summarizes a user's conversations for dashboard badges.
type Stats struct {
	TotalConversations int `json:"totalChats"`
	UnreadMessages     int `json:"unreadCount"`
}
